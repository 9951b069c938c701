// internal/cli/options.go
package cli

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"webblast/internal/version"
)

// Options holds all CLI flags and arguments.
//
// String options default to "" so the config layer can tell "not set on the
// command line" apart from an explicit value; documented defaults live in
// internal/config.
type Options struct {
	// Input: exactly one of these.
	FastaFile string // positional; "-" reads stdin
	RID       string // fetch-only: load results for an already-submitted search

	// Search parameters
	Database string
	Program  string

	// Remote service
	Endpoint string

	// Persistence
	DBPath string

	// Polling
	MaxWait time.Duration // total polling budget; 0 = config default

	ConfigFile string
	LogLevel   string
	Version    bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: submit a FASTA query to NCBI web BLAST and load the results into SQLite

Version: %s

Usage:
  %s [flags] <query.fasta>
  %s [flags] --rid <RID>

Flags:
`, name, version.Version, name, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	fs.StringVar(&opt.RID, "rid", "", "skip submission and fetch results for an existing RID")
	fs.StringVar(&opt.Database, "database", "", "BLAST database to search [nr]")
	fs.StringVar(&opt.Program, "program", "", "BLAST program [blastn]")
	fs.StringVar(&opt.Endpoint, "endpoint", "", "web BLAST endpoint URL [NCBI Blast.cgi]")
	fs.StringVar(&opt.DBPath, "db", "", "output SQLite database path [blastresults.db]")
	fs.DurationVar(&opt.MaxWait, "max-wait", 0, "total time to wait for the search to finish [1h]")
	fs.StringVar(&opt.ConfigFile, "config", "", "path to a YAML config file")
	fs.StringVar(&opt.LogLevel, "log-level", "info", "log level: debug, info, warn, error [info]")

	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	switch args := fs.Args(); {
	case len(args) > 1:
		return opt, fmt.Errorf("unexpected arguments after %q", args[0])
	case len(args) == 1:
		opt.FastaFile = args[0]
	}

	// Validation
	switch {
	case opt.FastaFile != "" && opt.RID != "":
		return opt, errors.New("--rid conflicts with a query file argument")
	case opt.FastaFile == "" && opt.RID == "":
		return opt, errors.New("provide a FASTA query file or --rid")
	}
	if opt.MaxWait < 0 {
		return opt, errors.New("--max-wait must be ≥ 0")
	}
	switch opt.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return opt, fmt.Errorf("invalid --log-level %q", opt.LogLevel)
	}
	return opt, nil
}
