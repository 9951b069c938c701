// Package config holds the webblast configuration: remote endpoint, search
// parameters, output database, and polling bounds. Everything has a working
// default; a YAML file and command-line flags override it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full webblast configuration.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	Database string `yaml:"database"`
	Program  string `yaml:"program"`
	DBPath   string `yaml:"db_path"`
	Poll     Poll   `yaml:"poll"`
}

// Poll bounds the status-polling loop.
type Poll struct {
	// MaxDelaySeconds caps a single inter-retry delay on the Fibonacci schedule.
	MaxDelaySeconds int `yaml:"max_delay_seconds"`
	// MaxWaitSeconds caps the total time spent waiting on a WAITING search.
	MaxWaitSeconds int `yaml:"max_wait_seconds"`
	// MaxRTOESleepSeconds caps the pre-poll sleep taken from the RTOE hint.
	MaxRTOESleepSeconds int `yaml:"max_rtoe_sleep_seconds"`
}

func (p Poll) MaxDelay() time.Duration     { return time.Duration(p.MaxDelaySeconds) * time.Second }
func (p Poll) MaxWait() time.Duration      { return time.Duration(p.MaxWaitSeconds) * time.Second }
func (p Poll) MaxRTOESleep() time.Duration { return time.Duration(p.MaxRTOESleepSeconds) * time.Second }

// Default returns the documented defaults: NCBI's public endpoint, blastn
// against nr, blastresults.db, 60s retry cap, 1h total polling budget.
func Default() *Config {
	return &Config{
		Endpoint: "https://blast.ncbi.nlm.nih.gov/blast/Blast.cgi",
		Database: "nr",
		Program:  "blastn",
		DBPath:   "blastresults.db",
		Poll: Poll{
			MaxDelaySeconds:     60,
			MaxWaitSeconds:      3600,
			MaxRTOESleepSeconds: 600,
		},
	}
}

// Load reads and parses a YAML config file. Returns Default merged with the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	if c.Program == "" {
		return fmt.Errorf("program is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Poll.MaxDelaySeconds <= 0 {
		return fmt.Errorf("poll.max_delay_seconds must be > 0")
	}
	if c.Poll.MaxWaitSeconds <= 0 {
		return fmt.Errorf("poll.max_wait_seconds must be > 0")
	}
	if c.Poll.MaxRTOESleepSeconds < 0 {
		return fmt.Errorf("poll.max_rtoe_sleep_seconds must be ≥ 0")
	}
	return nil
}
