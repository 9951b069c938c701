package cli

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"
)

func parse(t *testing.T, argv ...string) (Options, error) {
	t.Helper()
	fs := NewFlagSet("webblast")
	fs.SetOutput(io.Discard)
	return ParseArgs(fs, argv)
}

func TestParseFullInvocation(t *testing.T) {
	opt, err := parse(t,
		"--database", "nt",
		"--program", "blastn",
		"--db", "out.db",
		"--endpoint", "http://localhost:9999/blast",
		"--max-wait", "30m",
		"query.fa",
	)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opt.FastaFile != "query.fa" {
		t.Fatalf("FastaFile = %q", opt.FastaFile)
	}
	if opt.Database != "nt" || opt.Program != "blastn" {
		t.Fatalf("search params = %q/%q", opt.Database, opt.Program)
	}
	if opt.DBPath != "out.db" {
		t.Fatalf("DBPath = %q", opt.DBPath)
	}
	if opt.MaxWait != 30*time.Minute {
		t.Fatalf("MaxWait = %v", opt.MaxWait)
	}
}

func TestParseRequiresInput(t *testing.T) {
	if _, err := parse(t, "--database", "nr"); err == nil {
		t.Fatal("expected error without query file or --rid")
	}
}

func TestParseRIDMode(t *testing.T) {
	opt, err := parse(t, "--rid", "ABC123")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opt.RID != "ABC123" || opt.FastaFile != "" {
		t.Fatalf("opt = %+v", opt)
	}
}

func TestParseRIDConflictsWithFile(t *testing.T) {
	if _, err := parse(t, "--rid", "ABC123", "query.fa"); err == nil {
		t.Fatal("expected conflict error")
	}
}

func TestParseTrailingGarbage(t *testing.T) {
	if _, err := parse(t, "query.fa", "extra.fa"); err == nil {
		t.Fatal("expected error for extra positional argument")
	}
}

func TestParseBadLogLevel(t *testing.T) {
	if _, err := parse(t, "--log-level", "loud", "query.fa"); err == nil {
		t.Fatal("expected error for bad log level")
	}
}

func TestParseHelp(t *testing.T) {
	_, err := parse(t, "-h")
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("want flag.ErrHelp, got %v", err)
	}
}

func TestParseVersionSkipsValidation(t *testing.T) {
	opt, err := parse(t, "--version")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !opt.Version {
		t.Fatal("Version not set")
	}
}
