// Package store persists parsed BLAST results into a local SQLite database:
// three result tables (queries, hits, hsps) plus run bookkeeping.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"webblast/internal/report"
)

// Store wraps the SQLite results database. Foreign keys are enforced, so hits
// must reference existing queries and HSPs existing hits.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path. ":memory:" works
// for tests.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the tables if absent. Safe to call repeatedly.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// InsertQueries inserts a batch of query records in one transaction.
func (s *Store) InsertQueries(ctx context.Context, qs []report.Query) error {
	return s.inTx(ctx, "queries", func(tx *sql.Tx) error {
		return insertQueries(ctx, tx, qs)
	})
}

// InsertHits inserts a batch of hit records in one transaction.
func (s *Store) InsertHits(ctx context.Context, hs []report.Hit) error {
	return s.inTx(ctx, "hits", func(tx *sql.Tx) error {
		return insertHits(ctx, tx, hs)
	})
}

// InsertHSPs inserts a batch of HSP records in one transaction. The hspID
// surrogate key is assigned here by the database, not by the parser.
func (s *Store) InsertHSPs(ctx context.Context, hsps []report.HSP) error {
	return s.inTx(ctx, "hsps", func(tx *sql.Tx) error {
		return insertHSPs(ctx, tx, hsps)
	})
}

// InsertAll writes queries, hits, and HSPs in dependency order inside a
// single transaction, so a failure part-way leaves no half-populated run.
func (s *Store) InsertAll(ctx context.Context, recs report.Records) error {
	return s.inTx(ctx, "results", func(tx *sql.Tx) error {
		if err := insertQueries(ctx, tx, recs.Queries); err != nil {
			return err
		}
		if err := insertHits(ctx, tx, recs.Hits); err != nil {
			return err
		}
		return insertHSPs(ctx, tx, recs.HSPs)
	})
}

func (s *Store) inTx(ctx context.Context, what string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert into %s: begin: %w", what, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert into %s: %w", what, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert into %s: commit: %w", what, err)
	}
	return nil
}

func insertQueries(ctx context.Context, tx *sql.Tx, qs []report.Query) error {
	stmt, err := tx.PrepareContext(ctx, insertQuerySQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, q := range qs {
		if _, err := stmt.ExecContext(ctx, q.ID, q.Def, q.Length); err != nil {
			return fmt.Errorf("query %s: %w", q.ID, err)
		}
	}
	return nil
}

func insertHits(ctx context.Context, tx *sql.Tx, hs []report.Hit) error {
	stmt, err := tx.PrepareContext(ctx, insertHitSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, h := range hs {
		if _, err := stmt.ExecContext(ctx, h.ID, h.Def, h.Accession, h.QueryID); err != nil {
			return fmt.Errorf("hit %s: %w", h.ID, err)
		}
	}
	return nil
}

func insertHSPs(ctx context.Context, tx *sql.Tx, hsps []report.HSP) error {
	stmt, err := tx.PrepareContext(ctx, insertHSPSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, h := range hsps {
		if _, err := stmt.ExecContext(ctx, h.AlignLength, h.BitScore, h.EValue, h.Gaps, h.PercentID, h.HitID); err != nil {
			return fmt.Errorf("HSP for hit %s: %w", h.HitID, err)
		}
	}
	return nil
}

// Run is one pipeline execution recorded for bookkeeping, so operators can
// tell which run wrote which rows.
type Run struct {
	ID         string
	RID        string
	Program    string
	SearchDB   string
	QueryCount int
	HitCount   int
	HSPCount   int
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewRunID returns a time-ordered unique run identifier.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// RecordRun appends one row to the runs table.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx, insertRunSQL,
		r.ID, r.RID, r.Program, r.SearchDB,
		r.QueryCount, r.HitCount, r.HSPCount, r.Status,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert into runs: %w", err)
	}
	return nil
}
