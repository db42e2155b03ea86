package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/TomoyaKanno/Uniprot-Fetcher-for-ProtGPS/internal/uniprot"
)

type Config struct {
	UniprotBaseURL   string `json:"uniprot_base_url"`
	UserAgent        string `json:"user_agent"`
	HTTPTimeoutSecs  int64  `json:"http_timeout_seconds"`
	LogFile          string `json:"log_file"`
	LogLevel         string `json:"log_level"`
	WebAddr          string `json:"web_addr"`
	DefaultAccession string `json:"default_accession"`
	ExportFile       string `json:"export_file"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		UniprotBaseURL:   uniprot.DefaultBaseURL,
		HTTPTimeoutSecs:  20,
		LogLevel:         "info",
		WebAddr:          ":8080",
		DefaultAccession: "Q9Y5B6",
		ExportFile:       "sequences.fasta",
	}
}

// LoadConfig loads a JSON config from the given path. If path is empty, looks for ./config.json.
// A missing file is not an error; fields absent from the file keep their defaults.
// UNIPROT_BASE_URL overrides the base URL from either source.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	c := Defaults()
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// not fatal: keep defaults
	case err != nil:
		return nil, err
	default:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(c); err != nil {
			return nil, err
		}
	}
	if u := os.Getenv("UNIPROT_BASE_URL"); u != "" {
		c.UniprotBaseURL = u
	}
	return c, nil
}

// HTTPTimeout returns the fetch timeout.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSecs <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

// Client builds the UniProt client described by c.
func (c *Config) Client() *uniprot.Client {
	opts := []uniprot.Option{uniprot.WithTimeout(c.HTTPTimeout())}
	if c.UniprotBaseURL != "" {
		opts = append(opts, uniprot.WithBaseURL(c.UniprotBaseURL))
	}
	if c.UserAgent != "" {
		opts = append(opts, uniprot.WithUserAgent(c.UserAgent))
	}
	return uniprot.NewClient(opts...)
}
