package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"webblast/internal/report"
)

func open(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return s
}

func count(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func sampleRecords() report.Records {
	return report.Records{
		Queries: []report.Query{{ID: "Q1", Def: "test", Length: 300}},
		Hits: []report.Hit{
			{ID: "H1", Def: "first", Accession: "NM_000001", QueryID: "Q1"},
			{ID: "H2", Def: "second", Accession: "NM_000002", QueryID: "Q1"},
		},
		HSPs: []report.HSP{
			{AlignLength: 150, BitScore: 250.5, EValue: 1e-50, Gaps: 2, PercentID: 50, HitID: "H1"},
			{AlignLength: 75, BitScore: 90.1, EValue: 0.001, Gaps: 0, PercentID: 25, HitID: "H1"},
			{AlignLength: 60, BitScore: 45.0, EValue: 0.2, Gaps: 1, PercentID: 20, HitID: "H2"},
		},
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	s := open(t)
	// Second invocation against the same store must be a no-op.
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestInsertAll(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if err := s.InsertAll(ctx, sampleRecords()); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n := count(t, s, "queries"); n != 1 {
		t.Errorf("queries = %d", n)
	}
	if n := count(t, s, "hits"); n != 2 {
		t.Errorf("hits = %d", n)
	}
	if n := count(t, s, "hsps"); n != 3 {
		t.Errorf("hsps = %d", n)
	}
}

func TestHSPSurrogateKeyAssigned(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if err := s.InsertAll(ctx, sampleRecords()); err != nil {
		t.Fatalf("insert: %v", err)
	}
	rows, err := s.db.Query("SELECT hspID FROM hsps ORDER BY hspID")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan: %v", err)
		}
		ids = append(ids, id)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("hspIDs = %v, want 1..3", ids)
	}
}

// Foreign keys are pinned ON: a hit referencing a missing query is rejected.
func TestInsertHitsWithoutQueryRejected(t *testing.T) {
	s := open(t)
	err := s.InsertHits(context.Background(), []report.Hit{
		{ID: "H1", Def: "orphan", Accession: "X", QueryID: "missing"},
	})
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
	if n := count(t, s, "hits"); n != 0 {
		t.Fatalf("hits = %d after failed insert", n)
	}
}

func TestInsertAllRollsBackAsOne(t *testing.T) {
	s := open(t)
	recs := sampleRecords()
	// Point the last HSP at a hit that does not exist: the whole batch,
	// including the already-inserted queries and hits, must roll back.
	recs.HSPs[2].HitID = "missing"
	if err := s.InsertAll(context.Background(), recs); err == nil {
		t.Fatal("expected foreign key violation")
	}
	for _, table := range []string{"queries", "hits", "hsps"} {
		if n := count(t, s, table); n != 0 {
			t.Fatalf("%s = %d after rollback", table, n)
		}
	}
}

func TestRerunViolatesPrimaryKey(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if err := s.InsertAll(ctx, sampleRecords()); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	// Loading the same results twice is a pinned edge case: the queryID
	// primary key rejects it, it is not an upsert.
	if err := s.InsertAll(ctx, sampleRecords()); err == nil {
		t.Fatal("expected primary key violation on re-insert")
	}
}

func TestRecordRun(t *testing.T) {
	s := open(t)
	now := time.Now()
	run := Run{
		ID: NewRunID(), RID: "8AZKW2BC013",
		Program: "blastn", SearchDB: "nr",
		QueryCount: 1, HitCount: 2, HSPCount: 3,
		Status: "loaded", StartedAt: now, FinishedAt: now.Add(time.Minute),
	}
	if err := s.RecordRun(context.Background(), run); err != nil {
		t.Fatalf("record run: %v", err)
	}
	var rid, status string
	err := s.db.QueryRow("SELECT rid, status FROM runs WHERE runID = ?", run.ID).Scan(&rid, &status)
	if err != nil {
		t.Fatalf("select run: %v", err)
	}
	if rid != run.RID || status != "loaded" {
		t.Fatalf("run row = %q/%q", rid, status)
	}
}

func TestNewRunIDUnique(t *testing.T) {
	if NewRunID() == NewRunID() {
		t.Fatal("run ids must be unique")
	}
}
