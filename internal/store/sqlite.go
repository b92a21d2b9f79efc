package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/valuation-api/internal/model"
	"github.com/sells-group/valuation-api/internal/valuation"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS valuations (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL,
	name          TEXT,
	valuation_id  TEXT REFERENCES valuations(id),
	status        TEXT NOT NULL DEFAULT 'new',
	salesforce_id TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS page_views (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	referrer   TEXT,
	session_id TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_valuations_created_at ON valuations(created_at);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_page_views_created_at ON page_views(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateValuation(ctx context.Context, in valuation.Input, res valuation.Result) (*model.ValuationRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	inputJSON, err := json.Marshal(in)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal input")
	}
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO valuations (id, input, result, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(inputJSON), string(resultJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert valuation")
	}

	return &model.ValuationRecord{
		ID:        id,
		Input:     in,
		Result:    res,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) GetValuation(ctx context.Context, id string) (*model.ValuationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, result, created_at, updated_at FROM valuations WHERE id = ?`,
		id,
	)
	return scanValuation(row)
}

func (s *SQLiteStore) ListValuations(ctx context.Context, filter ValuationFilter) ([]model.ValuationRecord, error) {
	query := `SELECT id, input, result, created_at, updated_at FROM valuations WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND json_extract(input, '$.category') = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list valuations")
	}
	defer rows.Close()

	var records []model.ValuationRecord
	for rows.Next() {
		r, err := scanValuation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list valuations iterate")
}

func (s *SQLiteStore) UpdateValuationResult(ctx context.Context, id string, res valuation.Result) error {
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	r, err := s.db.ExecContext(ctx,
		`UPDATE valuations SET result = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update valuation %s", id)
	}
	return checkRowsAffected(r, "valuation", id)
}

func (s *SQLiteStore) CountValuations(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM valuations WHERE created_at >= ?`, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count valuations")
}

func (s *SQLiteStore) CreateLead(ctx context.Context, email, name, valuationID string) (*model.Lead, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, email, name, valuation_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, email, name, nullable(valuationID), string(model.LeadStatusNew), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead")
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

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, email, name, valuation_id, status, salesforce_id, created_at, updated_at FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) MarkLeadSynced(ctx context.Context, id, salesforceID string) error {
	r, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, salesforce_id = ?, updated_at = ? WHERE id = ?`,
		string(model.LeadStatusSynced), salesforceID, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark lead synced %s", id)
	}
	return checkRowsAffected(r, "lead", id)
}

func (s *SQLiteStore) MarkLeadSyncFailed(ctx context.Context, id string) error {
	r, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.LeadStatusFailed), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark lead failed %s", id)
	}
	return checkRowsAffected(r, "lead", id)
}

func (s *SQLiteStore) CountLeads(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads WHERE created_at >= ?`, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count leads")
}

func (s *SQLiteStore) RecordPageView(ctx context.Context, path, referrer, sessionID string) (*model.PageView, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO page_views (id, path, referrer, session_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, path, referrer, sessionID, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert page view")
	}

	return &model.PageView{
		ID:        id,
		Path:      path,
		Referrer:  referrer,
		SessionID: sessionID,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) CountPageViews(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM page_views WHERE created_at >= ?`, since.UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count page views")
}

// helpers

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanValuation(row scannable) (*model.ValuationRecord, error) {
	var r model.ValuationRecord
	var inputJSON, resultJSON string

	err := row.Scan(&r.ID, &inputJSON, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("valuation not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan valuation")
	}

	if err := json.Unmarshal([]byte(inputJSON), &r.Input); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal input")
	}
	if err := json.Unmarshal([]byte(resultJSON), &r.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &r, nil
}

func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var status string
	var name, valuationID, salesforceID sql.NullString

	err := row.Scan(&l.ID, &l.Email, &name, &valuationID, &status, &salesforceID, &l.CreatedAt, &l.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("lead not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan lead")
	}

	l.Status = model.LeadStatus(status)
	l.Name = name.String
	l.ValuationID = valuationID.String
	l.SalesforceID = salesforceID.String
	return &l, nil
}
