package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/ports"
)

// Registry keeps a mapping from ledger formats to their loaders.
type Registry struct {
	loaders map[string]ports.LedgerLoader
}

// NewRegistry builds a registry with the built-in HTML and YAML loaders.
func NewRegistry() *Registry {
	r := &Registry{loaders: map[string]ports.LedgerLoader{}}
	r.Register(NewHTMLLoader())
	r.Register(NewYAMLLoader())
	return r
}

// Register adds or replaces a loader implementation.
func (r *Registry) Register(loader ports.LedgerLoader) {
	if r.loaders == nil {
		r.loaders = map[string]ports.LedgerLoader{}
	}
	r.loaders[loader.Format()] = loader
}

// Resolve returns a loader by format, falling back to the file extension when format is empty.
func (r *Registry) Resolve(format, path string) (ports.LedgerLoader, error) {
	if format == "" {
		format = formatFromExt(path)
	}
	if loader, ok := r.loaders[strings.ToLower(format)]; ok {
		return loader, nil
	}
	return nil, fmt.Errorf("ledger format %q is not registered", format)
}

// Load resolves the loader and reads the debtors stored at path, together with the
// rows it had to reject.
func (r *Registry) Load(ctx context.Context, format, path string) ([]domain.Debtor, []domain.ErrorRecord, error) {
	loader, err := r.Resolve(format, path)
	if err != nil {
		return nil, nil, err
	}
	debtors, rejected, err := loader.Load(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s ledger %s: %w", loader.Format(), path, err)
	}
	return debtors, rejected, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}
