package parsers

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/interfaces"
	"github.com/Vodeneev/nbaprops/internal/pkg/performance"
)

type stubParser struct{ name string }

func (s stubParser) GetName() string { return s.name }

func (s stubParser) ParseOnce(context.Context) (*performance.RunReport, error) { return nil, nil }

func TestRegistry(t *testing.T) {
	Register(" Stub-Source ", func(*config.Config, interfaces.PropsStore, *slog.Logger) (interfaces.Parser, error) {
		return stubParser{name: "stub"}, nil
	})

	p, err := New("STUB-SOURCE", &config.Config{}, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.GetName() != "stub" {
		t.Fatalf("name = %q", p.GetName())
	}

	if _, err := New("missing", &config.Config{}, nil, nil); err == nil || !strings.Contains(err.Error(), "stub-source") {
		t.Fatalf("expected unknown-source error listing available names, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register("stub-source", func(*config.Config, interfaces.PropsStore, *slog.Logger) (interfaces.Parser, error) {
		return nil, nil
	})
}
