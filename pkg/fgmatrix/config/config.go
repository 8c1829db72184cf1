package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/netsampler/fgmatrix/format"
	"github.com/netsampler/fgmatrix/transport"
	"github.com/netsampler/fgmatrix/utils"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix = "FGMATRIX_"
)

// Config holds configuration for the fgmatrix application.
type Config struct {
	File string `yaml:"file" env:"FILE"`

	CountBytes bool `yaml:"count_bytes" env:"COUNT_BYTES"`
	Verbose    bool `yaml:"verbose" env:"VERBOSE"`
	Strict     bool `yaml:"strict" env:"STRICT"`

	Workers int `yaml:"workers" env:"WORKERS"`
	MaxLine int `yaml:"max_line" env:"MAX_LINE"`

	Format    string `yaml:"format" env:"FORMAT"`
	Transport string `yaml:"transport" env:"TRANSPORT"`

	LogLevel string `yaml:"loglevel" env:"LOGLEVEL"`
	LogFmt   string `yaml:"logfmt" env:"LOGFMT"`

	ErrCnt int           `yaml:"err_cnt" env:"ERR_CNT"`
	ErrInt time.Duration `yaml:"err_int" env:"ERR_INT"`

	MetricsPush string `yaml:"metrics_push" env:"METRICS_PUSH"`
	MetricsJob  string `yaml:"metrics_job" env:"METRICS_JOB"`
	Addr        string `yaml:"addr" env:"ADDR"`

	ConfigFile string `yaml:"-" env:"CONFIG"`
	Version    bool   `yaml:"-"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Workers:    1,
		MaxLine:    utils.DefaultMaxLineSize,
		Format:     "text",
		Transport:  "file",
		LogLevel:   "info",
		LogFmt:     "normal",
		ErrCnt:     10,
		ErrInt:     time.Second * 10,
		MetricsJob: "fgmatrix",
	}
}

// BindFlags registers configuration flags and returns a Config.
func BindFlags(fs *flag.FlagSet) *Config {
	cfg := Defaults()

	fs.StringVar(&cfg.File, "file", cfg.File, "FortiGate log file to read (- for stdin, gzip is detected)")
	fs.StringVar(&cfg.File, "f", cfg.File, "Shorthand for -file")
	fs.BoolVar(&cfg.CountBytes, "count-bytes", cfg.CountBytes, "Sum sentbyte and rcvdbyte per entry (both fields become required)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every skipped line at debug level")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Exit with an error when any line was skipped")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Decoding goroutines")
	fs.IntVar(&cfg.MaxLine, "max-line", cfg.MaxLine, "Maximum line length in bytes")
	fs.StringVar(&cfg.Format, "format", cfg.Format, fmt.Sprintf("Choose the format (available: %s)", strings.Join(format.GetFormats(), ", ")))
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, fmt.Sprintf("Choose the transport (available: %s)", strings.Join(transport.GetTransports(), ", ")))
	fs.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level")
	fs.StringVar(&cfg.LogFmt, "logfmt", cfg.LogFmt, "Log formatter")
	fs.IntVar(&cfg.ErrCnt, "err.cnt", cfg.ErrCnt, "Maximum errors per batch for muting")
	fs.DurationVar(&cfg.ErrInt, "err.int", cfg.ErrInt, "Maximum errors interval for muting")
	fs.StringVar(&cfg.MetricsPush, "metrics.push", cfg.MetricsPush, "Pushgateway URL to push metrics to at the end of the run")
	fs.StringVar(&cfg.MetricsJob, "metrics.job", cfg.MetricsJob, "Pushgateway job name")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address for metrics while running (empty to disable)")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file")
	fs.BoolVar(&cfg.Version, "version", cfg.Version, "Print version and exit")

	return cfg
}

// Load reads a YAML configuration into cfg. Keys absent from the document
// keep their current value.
func Load(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load config %s: open: %w", path, err)
	}
	defer f.Close()
	if err := Load(f, cfg); err != nil {
		return fmt.Errorf("load config %s: decode: %w", path, err)
	}
	return nil
}

// Resolve layers the configuration file, then FGMATRIX_ environment
// variables, under the flags explicitly set on fs. fs must already be parsed.
func (cfg *Config) Resolve(fs *flag.FlagSet) error {
	var explicit []setFlag
	fs.Visit(func(f *flag.Flag) {
		explicit = append(explicit, setFlag{name: f.Name, value: f.Value.String()})
	})

	path := cfg.ConfigFile
	if !isSet(explicit, "config") {
		if v, ok := os.LookupEnv(EnvPrefix + "CONFIG"); ok {
			path = v
		}
	}

	base := Defaults()
	if path != "" {
		if err := loadFile(path, base); err != nil {
			return err
		}
	}
	if err := env.ParseWithOptions(base, env.Options{
		Prefix: EnvPrefix,
	}); err != nil {
		return err
	}
	base.ConfigFile = path

	*cfg = *base
	for _, f := range explicit {
		if err := fs.Set(f.name, f.value); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

type setFlag struct {
	name  string
	value string
}

func isSet(flags []setFlag, name string) bool {
	for _, f := range flags {
		if f.name == name {
			return true
		}
	}
	return false
}

// Validate rejects values no run can work with.
func (cfg *Config) Validate() error {
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", cfg.Workers)
	}
	if cfg.MaxLine <= 0 {
		return fmt.Errorf("max-line must be positive: %d", cfg.MaxLine)
	}
	if cfg.ErrCnt < 0 {
		return fmt.Errorf("err.cnt must not be negative: %d", cfg.ErrCnt)
	}
	return nil
}

// EffectiveLogLevel is the configured level, or debug when verbose.
func (cfg *Config) EffectiveLogLevel() string {
	if cfg.Verbose {
		return "debug"
	}
	return cfg.LogLevel
}
