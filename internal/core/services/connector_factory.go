package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure ConnectorFactory implements the interface.
var _ driven.ConnectorFactory = (*ConnectorFactory)(nil)

// ConnectorFactory creates connectors from pairing configuration.
// Builders are registered once at startup; Create is safe for
// concurrent use afterwards.
type ConnectorFactory struct {
	mu       sync.RWMutex
	builders map[string]driven.ConnectorBuilder
}

// NewConnectorFactory creates an empty connector factory.
func NewConnectorFactory() *ConnectorFactory {
	return &ConnectorFactory{
		builders: make(map[string]driven.ConnectorBuilder),
	}
}

// Register adds a connector builder for the given type.
func (f *ConnectorFactory) Register(connectorType string, builder driven.ConnectorBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[connectorType] = builder
}

// Create returns a Connector for the given pairing.
func (f *ConnectorFactory) Create(_ context.Context, pairing domain.Pairing) (driven.Connector, error) {
	f.mu.RLock()
	builder, ok := f.builders[pairing.ConnectorType]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: connector type %q", domain.ErrUnsupportedType, pairing.ConnectorType)
	}
	return builder(pairing)
}

// SupportedTypes returns all registered connector types, sorted.
func (f *ConnectorFactory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
