// Package config loads the converter's HCL configuration file and applies
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/AkatukiSora/pokernow-ohh/internal/fileutil"
	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "pokernow-ohh.hcl"

// Identity strategies accepted by processing.identity.
const (
	IdentityInteractive = "interactive"
	IdentityBatch       = "batch"
	IdentityStrict      = "strict"
)

// Environment variables that override the file.
const (
	EnvHeroName  = "POKERNOW_OHH_HERO_NAME"
	EnvInputDir  = "POKERNOW_OHH_INPUT_DIR"
	EnvOutputDir = "POKERNOW_OHH_OUTPUT_DIR"
	EnvLogLevel  = "POKERNOW_OHH_LOG_LEVEL"
	EnvIdentity  = "POKERNOW_OHH_IDENTITY"
	EnvWorkers   = "POKERNOW_OHH_WORKERS"
)

type Config struct {
	OHH         OHH         `hcl:"ohh,block"`
	Directories Directories `hcl:"directories,block"`
	Processing  Processing  `hcl:"processing,block"`
	Logging     Logging     `hcl:"logging,block"`
}

// OHH holds the constants stamped on every document.
type OHH struct {
	SpecVersion     string `hcl:"spec_version,optional"`
	InternalVersion string `hcl:"internal_version,optional"`
	SiteName        string `hcl:"site_name,optional"`
	NetworkName     string `hcl:"network_name,optional"`
	Currency        string `hcl:"currency,optional"`
	OutputPrefix    string `hcl:"output_prefix,optional"`
	HeroName        string `hcl:"hero_name,optional"`
}

type Directories struct {
	InputDir  string `hcl:"input_dir,optional"`
	OutputDir string `hcl:"output_dir,optional"`
	ConfigDir string `hcl:"config_dir,optional"`
	LogDir    string `hcl:"log_dir,optional"`
	// Database is the SQLite hand repository path. Empty keeps hands in
	// memory for the run.
	Database string `hcl:"database,optional"`
}

type Processing struct {
	Workers  int    `hcl:"workers,optional"`
	Identity string `hcl:"identity,optional"`
	Answers  string `hcl:"answers,optional"`
}

type Logging struct {
	Level string `hcl:"level,optional"`
	Color *bool  `hcl:"color,optional"`
}

// fileShape makes every block optional.
type fileShape struct {
	OHH         *OHH         `hcl:"ohh,block"`
	Directories *Directories `hcl:"directories,block"`
	Processing  *Processing  `hcl:"processing,block"`
	Logging     *Logging     `hcl:"logging,block"`
}

func Default() *Config {
	color := true
	return &Config{
		OHH: OHH{
			SpecVersion:     "1.2.2",
			InternalVersion: "1.2.2",
			SiteName:        "PokerStars",
			NetworkName:     "PokerStars",
			Currency:        "USD",
			OutputPrefix:    "HHC",
		},
		Directories: Directories{
			InputDir:  "PokerNowHandHistory",
			OutputDir: "OpenHandHistory",
			ConfigDir: "Config",
			LogDir:    "Logs",
		},
		Processing: Processing{
			Workers:  4,
			Identity: IdentityInteractive,
		},
		Logging: Logging{
			Level: "info",
			Color: &color,
		},
	}
}

// Load reads filename, falling back to defaults when it does not exist, then
// applies .env and environment overrides.
func Load(filename string) (*Config, error) {
	cfg, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load()
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads filename without consulting the environment.
func LoadFile(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	p := hclparse.NewParser()
	file, diags := p.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var shape fileShape
	diags = gohcl.DecodeBody(file.Body, nil, &shape)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	return shape.merge(), nil
}

// merge overlays the non-zero values of the file on the defaults.
func (s fileShape) merge() *Config {
	cfg := Default()
	if o := s.OHH; o != nil {
		setString(&cfg.OHH.SpecVersion, o.SpecVersion)
		setString(&cfg.OHH.InternalVersion, o.InternalVersion)
		setString(&cfg.OHH.SiteName, o.SiteName)
		setString(&cfg.OHH.NetworkName, o.NetworkName)
		setString(&cfg.OHH.Currency, o.Currency)
		setString(&cfg.OHH.OutputPrefix, o.OutputPrefix)
		setString(&cfg.OHH.HeroName, o.HeroName)
	}
	if d := s.Directories; d != nil {
		setString(&cfg.Directories.InputDir, d.InputDir)
		setString(&cfg.Directories.OutputDir, d.OutputDir)
		setString(&cfg.Directories.ConfigDir, d.ConfigDir)
		setString(&cfg.Directories.LogDir, d.LogDir)
		setString(&cfg.Directories.Database, d.Database)
	}
	if p := s.Processing; p != nil {
		if p.Workers != 0 {
			cfg.Processing.Workers = p.Workers
		}
		setString(&cfg.Processing.Identity, p.Identity)
		setString(&cfg.Processing.Answers, p.Answers)
	}
	if l := s.Logging; l != nil {
		setString(&cfg.Logging.Level, l.Level)
		if l.Color != nil {
			cfg.Logging.Color = l.Color
		}
	}
	return cfg
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ApplyEnv overrides settings from lookup, normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHeroName); ok {
		c.OHH.HeroName = v
	}
	if v, ok := lookup(EnvInputDir); ok && v != "" {
		c.Directories.InputDir = v
	}
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.Directories.OutputDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvIdentity); ok && v != "" {
		c.Processing.Identity = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvWorkers, err)
		}
		c.Processing.Workers = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Processing.Identity {
	case IdentityInteractive, IdentityStrict:
	case IdentityBatch:
		if c.Processing.Answers == "" {
			return fmt.Errorf("identity strategy %q needs processing.answers", IdentityBatch)
		}
	default:
		return fmt.Errorf("unknown identity strategy %q", c.Processing.Identity)
	}
	if c.Processing.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Processing.Workers)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if c.OHH.SpecVersion == "" {
		return errors.New("ohh.spec_version must not be empty")
	}
	return nil
}

// ColorEnabled reports whether console output may use colour.
func (c *Config) ColorEnabled() bool {
	return c.Logging.Color == nil || *c.Logging.Color
}

// Settings returns the values the compiler and serializer need.
func (c *Config) Settings() parser.Settings {
	s := parser.DefaultSettings()
	s.SpecVersion = c.OHH.SpecVersion
	s.InternalVersion = c.OHH.InternalVersion
	s.SiteName = c.OHH.SiteName
	s.NetworkName = c.OHH.NetworkName
	s.Currency = c.OHH.Currency
	s.HeroName = c.OHH.HeroName
	return s
}

const defaultFile = `# pokernow-ohh configuration

ohh {
  spec_version     = "1.2.2"
  internal_version = "1.2.2"
  site_name        = "PokerStars"
  network_name     = "PokerStars"
  currency         = "USD"
  output_prefix    = "HHC"
  hero_name        = ""
}

directories {
  input_dir  = "PokerNowHandHistory"
  output_dir = "OpenHandHistory"
  config_dir = "Config"
  log_dir    = "Logs"
  # Empty keeps the hand repository in memory.
  database = ""
}

processing {
  workers = 4
  # interactive | batch | strict
  identity = "interactive"
  # TOML answers file used by the batch strategy.
  answers = ""
}

logging {
  level = "info"
  color = true
}
`

// WriteDefault writes the default configuration to filename. An existing
// file is only replaced when force is set.
func WriteDefault(filename string, force bool) error {
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("%s already exists", filename)
		}
	}
	return fileutil.WriteFileAtomic(filename, []byte(defaultFile), 0o644)
}
