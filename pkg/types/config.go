package types

import (
	"errors"
	"unicode/utf8"
)

// Config holds the settings read from config.yaml, environment and flags.
type Config struct {
	Delimiter string `mapstructure:"delimiter" json:"delimiter" yaml:"delimiter"`
	Arity     string `mapstructure:"arity" json:"arity" yaml:"arity"`
	Workers   int    `mapstructure:"workers" json:"workers" yaml:"workers"`
	LogLevel  string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	DataDir   string `mapstructure:"data_dir" json:"data_dir" yaml:"data_dir"`
}

// ArityPolicy decides what ingestion does with rows whose field count does
// not match the header.
type ArityPolicy string

// Supported arity policies.
const (
	ArityStrict   ArityPolicy = "strict"   // reject the input
	ArityTruncate ArityPolicy = "truncate" // cut long rows, reject short ones
	ArityPad      ArityPolicy = "pad"      // cut long rows, pad short ones with ""
)

// Defaults applied when a key is absent.
const (
	DefaultDelimiter = ","
	DefaultArity     = ArityStrict
	DefaultWorkers   = 4
	DefaultLogLevel  = "info"
)

// Config validation errors.
var (
	ErrDelimiterInvalid = errors.New("delimiter must be a single character")
	ErrArityUnknown     = errors.New("unknown arity policy")
	ErrWorkersInvalid   = errors.New("workers must be positive")
	ErrLogLevelUnknown  = errors.New("unknown log level")
)

var knownArity = map[ArityPolicy]bool{
	ArityStrict:   true,
	ArityTruncate: true,
	ArityPad:      true,
}

var knownLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{
		Delimiter: DefaultDelimiter,
		Arity:     string(DefaultArity),
		Workers:   DefaultWorkers,
		LogLevel:  DefaultLogLevel,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 || c.Delimiter == "\n" || c.Delimiter == "\r" {
		return ErrDelimiterInvalid
	}
	if !knownArity[ArityPolicy(c.Arity)] {
		return ErrArityUnknown
	}
	if c.Workers <= 0 {
		return ErrWorkersInvalid
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}

// DelimiterRune returns the delimiter as a rune. Call Validate first.
func (c Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}
