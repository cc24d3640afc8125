package ledger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"

	"SmartRecover/internal/domain"
)

// record is the textual form of one ledger row shared by every format.
type record struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	TotalDebt        string `yaml:"total_debt"`
	MonthlyIncome    string `yaml:"monthly_income"`
	LatePayments     string `yaml:"late_payments"`
	EmploymentStatus string `yaml:"employment_status"`
	ContractType     string `yaml:"contract_type"`
	IndustrySector   string `yaml:"industry_sector"`
	FamilySituation  string `yaml:"family_situation"`
	PaymentStatus    string `yaml:"payment_status"`
	RiskScore        string `yaml:"risk_score"`
}

func (r record) toDebtor() (domain.Debtor, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.ID), 10, 64)
	if err != nil {
		return domain.Debtor{}, fmt.Errorf("id %q: %w", r.ID, err)
	}

	debt, err := parseAmount(r.TotalDebt)
	if err != nil {
		return domain.Debtor{}, fmt.Errorf("debtor %d total debt: %w", id, err)
	}
	income, err := parseAmount(r.MonthlyIncome)
	if err != nil {
		return domain.Debtor{}, fmt.Errorf("debtor %d monthly income: %w", id, err)
	}

	late := 0
	if v := strings.TrimSpace(r.LatePayments); v != "" {
		late, err = strconv.Atoi(v)
		if err != nil {
			return domain.Debtor{}, fmt.Errorf("debtor %d late payments: %w", id, err)
		}
	}

	status := domain.PaymentStatus(normalizeLabel(r.PaymentStatus))
	if status == "" {
		status = domain.PaymentUnpaid
	}

	d := domain.Debtor{
		ID:               id,
		Name:             strings.Join(strings.Fields(norm.NFKC.String(r.Name)), " "),
		TotalDebt:        debt,
		MonthlyIncome:    income,
		LatePayments:     late,
		EmploymentStatus: domain.EmploymentStatus(normalizeLabel(r.EmploymentStatus)),
		ContractType:     domain.ContractType(normalizeLabel(r.ContractType)),
		IndustrySector:   domain.IndustrySector(normalizeLabel(r.IndustrySector)),
		FamilySituation:  domain.FamilySituation(normalizeLabel(r.FamilySituation)),
		PaymentStatus:    status,
	}

	if v := strings.TrimSpace(r.RiskScore); v != "" {
		total, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.Debtor{}, fmt.Errorf("debtor %d risk score: %w", id, err)
		}
		d.Score = &domain.RiskScore{Total: total}
	}

	return d, nil
}

// reject turns a row that failed to parse into an isolated error record. The debtor id
// is kept when it was readable.
func (r record) reject(where string, err error) domain.ErrorRecord {
	id, _ := strconv.ParseInt(strings.TrimSpace(r.ID), 10, 64)
	return domain.ErrorRecord{
		DebtorID:     id,
		Stage:        domain.StagePriorityCalculation,
		ErrorMessage: fmt.Sprintf("%s: %v", where, err),
	}
}

// parseAmount accepts plain decimals as well as grouped values like "12,500.00".
func parseAmount(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(norm.NFKC.String(raw))
	if v == "" {
		return decimal.Zero, nil
	}
	v = strings.ReplaceAll(v, ",", "")
	v = strings.ReplaceAll(v, " ", "")
	return decimal.NewFromString(v)
}

// normalizeLabel folds a categorical label to its canonical form, e.g. "Self employed" to "SELF_EMPLOYED".
func normalizeLabel(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.Join(fields, "_"))
}
