package parsers

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/interfaces"
)

// Factory builds a ready-to-run source writing into store.
type Factory func(cfg *config.Config, store interfaces.PropsStore, logger *slog.Logger) (interfaces.Parser, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func Register(name string, f Factory) {
	n := normalizeName(name)
	if n == "" {
		panic("parsers: empty name in Register")
	}
	if f == nil {
		panic("parsers: nil factory in Register for " + n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[n]; exists {
		panic("parsers: duplicate registration for " + n)
	}
	registry[n] = f
}

func FactoryByName(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[normalizeName(name)]
	return f, ok
}

func AvailableNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New looks up name and builds the source.
func New(name string, cfg *config.Config, store interfaces.PropsStore, logger *slog.Logger) (interfaces.Parser, error) {
	f, ok := FactoryByName(name)
	if !ok {
		return nil, fmt.Errorf("parsers: unknown source %q (available: %v)", name, AvailableNames())
	}
	return f(cfg, store, logger)
}
