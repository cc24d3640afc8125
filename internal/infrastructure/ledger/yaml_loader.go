package ledger

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/ports"
)

// FormatYAML identifies YAML ledger files with a top-level debtors list.
const FormatYAML = "yaml"

type yamlLedger struct {
	Debtors []record `yaml:"debtors"`
}

// YAMLLoader reads debtors from a YAML document.
type YAMLLoader struct{}

var _ ports.LedgerLoader = (*YAMLLoader)(nil)

// NewYAMLLoader returns a loader for YAML ledgers.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Format identifies the loader inside the registry.
func (l *YAMLLoader) Format() string {
	return FormatYAML
}

// Load decodes the document at path into debtors. Entries that fail to parse are
// rejected individually.
func (l *YAMLLoader) Load(ctx context.Context, path string) ([]domain.Debtor, []domain.ErrorRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read ledger: %w", err)
	}

	var doc yamlLedger
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode ledger: %w", err)
	}

	var (
		debtors  = make([]domain.Debtor, 0, len(doc.Debtors))
		rejected []domain.ErrorRecord
	)
	for i, rec := range doc.Debtors {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		d, err := rec.toDebtor()
		if err != nil {
			rejected = append(rejected, rec.reject(fmt.Sprintf("ledger entry %d", i), err))
			continue
		}
		debtors = append(debtors, d)
	}
	return debtors, rejected, nil
}
