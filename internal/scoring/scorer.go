// Package scoring computes normalized composite risk scores for debtors.
package scoring

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"SmartRecover/internal/domain"
)

// Factor names, in evaluation order.
const (
	FactorDebtRatio      = "debt_ratio"
	FactorPaymentHistory = "payment_history"
	FactorEmployment     = "employment_status"
	FactorContract       = "contract_type"
	FactorIndustry       = "industry_sector"
	FactorFamily         = "family_situation"
)

const (
	maxFactorScore         = 10
	defaultCategoricalRisk = 5
)

// MaxScore is the upper bound of a normalized score.
const MaxScore = 100.0

var factorOrder = []string{
	FactorDebtRatio,
	FactorPaymentHistory,
	FactorEmployment,
	FactorContract,
	FactorIndustry,
	FactorFamily,
}

var factorWeights = map[string]int{
	FactorDebtRatio:      9,
	FactorPaymentHistory: 9,
	FactorEmployment:     8,
	FactorContract:       7,
	FactorIndustry:       6,
	FactorFamily:         6,
}

var (
	employmentRisk = map[domain.EmploymentStatus]int{
		domain.EmploymentEmployed:     3,
		domain.EmploymentGovernment:   1,
		domain.EmploymentSelfEmployed: 6,
		domain.EmploymentUnemployed:   10,
	}
	contractRisk = map[domain.ContractType]int{
		domain.ContractPermanent: 2,
		domain.ContractTemporary: 6,
		domain.ContractFreelance: 8,
	}
	industryRisk = map[domain.IndustrySector]int{
		domain.IndustryHealthcare:   3,
		domain.IndustryEducation:    3,
		domain.IndustryFinance:      4,
		domain.IndustryTechnology:   4,
		domain.IndustryConstruction: 7,
		domain.IndustryHospitality:  8,
	}
	familyRisk = map[domain.FamilySituation]int{
		domain.FamilyMarriedDualIncome:    2,
		domain.FamilyMarriedSingleIncome:  5,
		domain.FamilySingleNoDependents:   4,
		domain.FamilySingleWithDependents: 8,
	}
)

var (
	ratioLow    = decimal.NewFromInt(1)
	ratioMedium = decimal.NewFromInt(3)
	ratioHigh   = decimal.NewFromInt(6)
)

// Assessment is the scorer output for a single debtor.
type Assessment struct {
	Total   float64
	Level   domain.RiskLevel
	Factors map[string]int
}

// Scorer is a pure weighted risk function. It holds no state and is safe for concurrent use.
type Scorer struct {
	maxWeighted int
}

// NewScorer builds a scorer over the fixed factor-weight table.
func NewScorer() *Scorer {
	return &Scorer{maxWeighted: maxWeightedSum()}
}

// NormalizeWeighted maps a raw weighted factor sum onto the 0..100 score scale.
func NormalizeWeighted(raw float64) float64 {
	return raw / float64(maxWeightedSum()) * MaxScore
}

func maxWeightedSum() int {
	sum := 0
	for _, w := range factorWeights {
		sum += maxFactorScore * w
	}
	return sum
}

// Score returns the normalized 0..100 composite score for the debtor.
// Unknown categorical values contribute a default risk and never fail; only malformed
// numeric attributes produce a *domain.ScoringError.
func (s *Scorer) Score(d domain.Debtor) (Assessment, error) {
	if err := validate(d); err != nil {
		return Assessment{}, &domain.ScoringError{DebtorID: d.ID, Err: err}
	}

	factors := map[string]int{
		FactorDebtRatio:      debtRatioRisk(d),
		FactorPaymentHistory: paymentHistoryRisk(d.LatePayments),
		FactorEmployment:     lookup(employmentRisk, d.EmploymentStatus),
		FactorContract:       lookup(contractRisk, d.ContractType),
		FactorIndustry:       lookup(industryRisk, d.IndustrySector),
		FactorFamily:         lookup(familyRisk, d.FamilySituation),
	}

	weighted := 0
	for _, name := range factorOrder {
		weighted += factors[name] * factorWeights[name]
	}

	total := float64(weighted) / float64(s.maxWeighted) * MaxScore
	return Assessment{
		Total:   total,
		Level:   Level(total),
		Factors: factors,
	}, nil
}

// Level maps a normalized score to its risk class.
func Level(score float64) domain.RiskLevel {
	switch {
	case score <= 30:
		return domain.RiskLow
	case score <= 60:
		return domain.RiskMedium
	case score <= 80:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}

// Factors lists the factor names in evaluation order.
func Factors() []string {
	out := make([]string, len(factorOrder))
	copy(out, factorOrder)
	return out
}

func validate(d domain.Debtor) error {
	if d.ID <= 0 {
		return fmt.Errorf("invalid debtor id %d", d.ID)
	}
	if d.TotalDebt.IsNegative() {
		return fmt.Errorf("negative debt amount %s", d.TotalDebt.String())
	}
	if d.LatePayments < 0 {
		return errors.New("negative late payment count")
	}
	return nil
}

func debtRatioRisk(d domain.Debtor) int {
	if !d.MonthlyIncome.IsPositive() {
		return maxFactorScore
	}

	ratio := d.TotalDebt.Div(d.MonthlyIncome)
	switch {
	case ratio.LessThanOrEqual(ratioLow):
		return 2
	case ratio.LessThanOrEqual(ratioMedium):
		return 5
	case ratio.LessThanOrEqual(ratioHigh):
		return 7
	default:
		return maxFactorScore
	}
}

func paymentHistoryRisk(late int) int {
	switch {
	case late == 0:
		return 1
	case late <= 2:
		return 4
	case late <= 5:
		return 7
	default:
		return maxFactorScore
	}
}

func lookup[K comparable](table map[K]int, key K) int {
	if v, ok := table[key]; ok {
		return v
	}
	return defaultCategoricalRisk
}
