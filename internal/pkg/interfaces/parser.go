package interfaces

import (
	"context"

	"github.com/Vodeneev/nbaprops/internal/pkg/models"
	"github.com/Vodeneev/nbaprops/internal/pkg/performance"
)

// Parser is one ingestion source. ParseOnce performs a complete run and returns its
// report; the report is non-nil whenever the run got far enough to start.
type Parser interface {
	GetName() string
	ParseOnce(ctx context.Context) (*performance.RunReport, error)
}

// RunNotifier is told about every finished run.
type RunNotifier interface {
	NotifyRun(ctx context.Context, report *performance.RunReport) error
}

// PropsStore persists normalized rows, one table per market.
type PropsStore interface {
	EnsureSchema(ctx context.Context, table string) error
	UpsertRows(ctx context.Context, table string, rows []models.PropRow) (int64, error)
}
