package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"SmartRecover/internal/domain"
	"SmartRecover/internal/ports"
	"SmartRecover/internal/scoring"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var debtorColumns = []string{
	"d.id",
	"d.name",
	"d.total_debt_amount::text",
	"d.monthly_income::text",
	"d.late_payments_count",
	"d.employment_status",
	"d.contract_type",
	"d.industry_sector",
	"d.family_situation",
	"d.payment_status",
	"rs.total_score",
	"rs.risk_level",
	"rs.calculated_at",
}

// PostgresRepository reads debtors together with their cached risk score.
type PostgresRepository struct {
	pool           *pgxpool.Pool
	weightedScores bool
}

var _ ports.DebtorRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a pgx pool implementation.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// WithWeightedScores treats risk_scores.total_score as a raw weighted factor sum and
// normalizes it to the 0..100 scale on read.
func (r *PostgresRepository) WithWeightedScores() *PostgresRepository {
	r.weightedScores = true
	return r
}

// NewPool opens a pgx pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// FetchAll streams every debtor with the cached score eagerly joined.
func (r *PostgresRepository) FetchAll(ctx context.Context, visit func(domain.Debtor) error) error {
	query, args, err := fetchAllQuery().ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query debtors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDebtor(rows)
		if err != nil {
			return err
		}
		r.normalize(&d)
		if err := visit(d); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration: %w", err)
	}
	return nil
}

// FetchByID reads a single debtor; a missing row maps to domain.ErrNotFound.
func (r *PostgresRepository) FetchByID(ctx context.Context, id int64) (domain.Debtor, error) {
	query, args, err := fetchByIDQuery(id).ToSql()
	if err != nil {
		return domain.Debtor{}, fmt.Errorf("build query: %w", err)
	}

	d, err := scanDebtor(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Debtor{}, fmt.Errorf("debtor %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Debtor{}, err
	}
	r.normalize(&d)
	return d, nil
}

func (r *PostgresRepository) normalize(d *domain.Debtor) {
	if r.weightedScores && d.Score != nil {
		d.Score.Total = scoring.NormalizeWeighted(d.Score.Total)
	}
}

func baseQuery() sq.SelectBuilder {
	return psql.Select(debtorColumns...).
		From("debtors d").
		LeftJoin("risk_scores rs ON rs.debtor_id = d.id")
}

func fetchAllQuery() sq.SelectBuilder {
	return baseQuery().OrderBy("d.id")
}

func fetchByIDQuery(id int64) sq.SelectBuilder {
	return baseQuery().Where(sq.Eq{"d.id": id})
}

func scanDebtor(row pgx.Row) (domain.Debtor, error) {
	var (
		d                    domain.Debtor
		debt, income         string
		employment, contract string
		industry, family     string
		paymentStatus        string
		score                *float64
		level                *string
		calculatedAt         *time.Time
	)

	err := row.Scan(
		&d.ID, &d.Name, &debt, &income, &d.LatePayments,
		&employment, &contract, &industry, &family, &paymentStatus,
		&score, &level, &calculatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Debtor{}, err
	}
	if err != nil {
		return domain.Debtor{}, fmt.Errorf("scan debtor: %w", err)
	}

	if d.TotalDebt, err = decimal.NewFromString(debt); err != nil {
		return domain.Debtor{}, fmt.Errorf("parse debt amount of debtor %d: %w", d.ID, err)
	}
	if d.MonthlyIncome, err = decimal.NewFromString(income); err != nil {
		return domain.Debtor{}, fmt.Errorf("parse income of debtor %d: %w", d.ID, err)
	}

	d.EmploymentStatus = domain.EmploymentStatus(employment)
	d.ContractType = domain.ContractType(contract)
	d.IndustrySector = domain.IndustrySector(industry)
	d.FamilySituation = domain.FamilySituation(family)
	d.PaymentStatus = domain.PaymentStatus(paymentStatus)

	if score != nil {
		d.Score = &domain.RiskScore{Total: *score}
		if level != nil {
			d.Score.Level = domain.RiskLevel(*level)
		}
		if calculatedAt != nil {
			d.Score.CalculatedAt = *calculatedAt
		}
	}
	return d, nil
}
