package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debtor is the unit of work: a debt account with the attributes used for risk scoring.
// It is owned by the repository; the engine only reads it.
type Debtor struct {
	ID               int64
	Name             string
	TotalDebt        decimal.Decimal
	MonthlyIncome    decimal.Decimal
	LatePayments     int
	EmploymentStatus EmploymentStatus
	ContractType     ContractType
	IndustrySector   IndustrySector
	FamilySituation  FamilySituation
	PaymentStatus    PaymentStatus

	// Score is the previously computed risk score, if any. It may be stale.
	Score *RiskScore
}

// RiskScore is a score persisted alongside a debtor by an external collaborator.
type RiskScore struct {
	Total        float64
	Level        RiskLevel
	CalculatedAt time.Time
}

// RiskLevel buckets a score into a human-readable class.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// EmploymentStatus affects income stability assessment.
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "EMPLOYED"
	EmploymentGovernment   EmploymentStatus = "GOVERNMENT"
	EmploymentSelfEmployed EmploymentStatus = "SELF_EMPLOYED"
	EmploymentUnemployed   EmploymentStatus = "UNEMPLOYED"
)

// ContractType describes the debtor's employment contract.
type ContractType string

const (
	ContractPermanent ContractType = "PERMANENT"
	ContractTemporary ContractType = "TEMPORARY"
	ContractFreelance ContractType = "FREELANCE"
)

// IndustrySector is the debtor's industry of employment.
type IndustrySector string

const (
	IndustryHealthcare   IndustrySector = "HEALTHCARE"
	IndustryEducation    IndustrySector = "EDUCATION"
	IndustryFinance      IndustrySector = "FINANCE"
	IndustryTechnology   IndustrySector = "TECHNOLOGY"
	IndustryConstruction IndustrySector = "CONSTRUCTION"
	IndustryHospitality  IndustrySector = "HOSPITALITY"
)

// FamilySituation affects financial stability assessment.
type FamilySituation string

const (
	FamilyMarriedDualIncome    FamilySituation = "MARRIED_DUAL_INCOME"
	FamilyMarriedSingleIncome  FamilySituation = "MARRIED_SINGLE_INCOME"
	FamilySingleNoDependents   FamilySituation = "SINGLE_NO_DEPENDENTS"
	FamilySingleWithDependents FamilySituation = "SINGLE_WITH_DEPENDENTS"
)

// PaymentStatus is the internal repayment state of the account.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)
