package ledger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/ports"
)

// FormatHTML identifies debtor tables exported from partner portals.
const FormatHTML = "html"

// HTMLLoader reads the first table whose header carries an id column.
type HTMLLoader struct{}

var _ ports.LedgerLoader = (*HTMLLoader)(nil)

// NewHTMLLoader returns a loader for HTML ledger exports.
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

// Format identifies the loader inside the registry.
func (l *HTMLLoader) Format() string {
	return FormatHTML
}

// Load parses the table at path into debtors. Rows that fail to parse are rejected
// individually.
func (l *HTMLLoader) Load(ctx context.Context, path string) ([]domain.Debtor, []domain.ErrorRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}

	return extractDebtors(ctx, doc)
}

func extractDebtors(ctx context.Context, doc *goquery.Document) ([]domain.Debtor, []domain.ErrorRecord, error) {
	var (
		columns map[string]int
		table   *goquery.Selection
	)
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		cols := headerColumns(t)
		if _, ok := cols["ID"]; ok {
			columns, table = cols, t
			return false
		}
		return true
	})
	if table == nil {
		return nil, nil, fmt.Errorf("no debtor table found")
	}

	var (
		debtors  []domain.Debtor
		rejected []domain.ErrorRecord
		ctxErr   error
	)
	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			return false
		}
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return true
		}
		values := make([]string, cells.Length())
		cells.Each(func(j int, td *goquery.Selection) {
			values[j] = strings.TrimSpace(td.Text())
		})

		rec := rowRecord(columns, values)
		d, err := rec.toDebtor()
		if err != nil {
			rejected = append(rejected, rec.reject(fmt.Sprintf("ledger row %d", i), err))
			return true
		}
		debtors = append(debtors, d)
		return true
	})
	if ctxErr != nil {
		return nil, nil, ctxErr
	}

	return debtors, rejected, nil
}

func headerColumns(table *goquery.Selection) map[string]int {
	cols := map[string]int{}
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		cols[normalizeLabel(th.Text())] = i
	})
	return cols
}

func rowRecord(columns map[string]int, values []string) record {
	cell := func(name string) string {
		if i, ok := columns[name]; ok && i < len(values) {
			return values[i]
		}
		return ""
	}
	return record{
		ID:               cell("ID"),
		Name:             cell("NAME"),
		TotalDebt:        cell("TOTAL_DEBT"),
		MonthlyIncome:    cell("MONTHLY_INCOME"),
		LatePayments:     cell("LATE_PAYMENTS"),
		EmploymentStatus: cell("EMPLOYMENT_STATUS"),
		ContractType:     cell("CONTRACT_TYPE"),
		IndustrySector:   cell("INDUSTRY_SECTOR"),
		FamilySituation:  cell("FAMILY_SITUATION"),
		PaymentStatus:    cell("PAYMENT_STATUS"),
		RiskScore:        cell("RISK_SCORE"),
	}
}
