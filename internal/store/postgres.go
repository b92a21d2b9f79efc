package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/valuation-api/internal/db"
	"github.com/sells-group/valuation-api/internal/model"
	"github.com/sells-group/valuation-api/internal/valuation"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres connects to the given database URL and returns a store.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS valuations (
	id         UUID PRIMARY KEY,
	input      JSONB NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL,
	name          TEXT,
	valuation_id  UUID REFERENCES valuations(id),
	status        TEXT NOT NULL DEFAULT 'new',
	salesforce_id TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS page_views (
	id         UUID PRIMARY KEY,
	path       TEXT NOT NULL,
	referrer   TEXT,
	session_id TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_valuations_created_at ON valuations(created_at);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_page_views_created_at ON page_views(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateValuation(ctx context.Context, in valuation.Input, res valuation.Result) (*model.ValuationRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	inputJSON, err := json.Marshal(in)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal input")
	}
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO valuations (id, input, result, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, inputJSON, resultJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert valuation")
	}

	return &model.ValuationRecord{
		ID:        id,
		Input:     in,
		Result:    res,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) GetValuation(ctx context.Context, id string) (*model.ValuationRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, input, result, created_at, updated_at FROM valuations WHERE id = $1`,
		id,
	)
	return scanPGValuation(row)
}

func (s *PostgresStore) ListValuations(ctx context.Context, filter ValuationFilter) ([]model.ValuationRecord, error) {
	query := `SELECT id, input, result, created_at, updated_at FROM valuations`
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` WHERE input->>'category' = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list valuations")
	}
	defer rows.Close()

	var records []model.ValuationRecord
	for rows.Next() {
		r, err := scanPGValuation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list valuations iterate")
}

func (s *PostgresStore) UpdateValuationResult(ctx context.Context, id string, res valuation.Result) error {
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE valuations SET result = $1, updated_at = $2 WHERE id = $3`,
		resultJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update valuation %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("valuation not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CountValuations(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM valuations WHERE created_at >= $1`, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "postgres: count valuations")
}

func (s *PostgresStore) CreateLead(ctx context.Context, email, name, valuationID string) (*model.Lead, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, email, name, valuation_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, email, name, nullable(valuationID), string(model.LeadStatusNew), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert lead")
	}

	return &model.Lead{
		ID:          id,
		Email:       email,
		Name:        name,
		ValuationID: valuationID,
		Status:      model.LeadStatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, email, name, valuation_id, status, salesforce_id, created_at, updated_at FROM leads`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanPGLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) MarkLeadSynced(ctx context.Context, id, salesforceID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1, salesforce_id = $2, updated_at = $3 WHERE id = $4`,
		string(model.LeadStatusSynced), salesforceID, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark lead synced %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) MarkLeadSyncFailed(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
		string(model.LeadStatusFailed), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark lead failed %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CountLeads(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE created_at >= $1`, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "postgres: count leads")
}

func (s *PostgresStore) RecordPageView(ctx context.Context, path, referrer, sessionID string) (*model.PageView, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO page_views (id, path, referrer, session_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, path, referrer, sessionID, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert page view")
	}

	return &model.PageView{
		ID:        id,
		Path:      path,
		Referrer:  referrer,
		SessionID: sessionID,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) CountPageViews(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM page_views WHERE created_at >= $1`, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "postgres: count page views")
}

func scanPGValuation(row pgx.Row) (*model.ValuationRecord, error) {
	var r model.ValuationRecord
	var inputJSON, resultJSON []byte

	err := row.Scan(&r.ID, &inputJSON, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("valuation not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan valuation")
	}

	if err := json.Unmarshal(inputJSON, &r.Input); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal input")
	}
	if err := json.Unmarshal(resultJSON, &r.Result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal result")
	}
	return &r, nil
}

func scanPGLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var status string
	var name, valuationID, salesforceID *string

	err := row.Scan(&l.ID, &l.Email, &name, &valuationID, &status, &salesforceID, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("lead not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan lead")
	}

	l.Status = model.LeadStatus(status)
	if name != nil {
		l.Name = *name
	}
	if valuationID != nil {
		l.ValuationID = *valuationID
	}
	if salesforceID != nil {
		l.SalesforceID = *salesforceID
	}
	return &l, nil
}
