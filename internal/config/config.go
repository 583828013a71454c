// Package config loads parser and schema settings from flags, environment
// variables and an optional configuration file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nlstn/go-filters/internal/filtererrors"
	"github.com/nlstn/go-filters/internal/query"
	"github.com/nlstn/go-filters/internal/schema"
)

// EnvPrefix prefixes every environment variable, e.g. FILTERS_NULL_VALUE.
const EnvPrefix = "FILTERS"

// Setting keys.
const (
	KeyConfig               = "config"
	KeyNullValue            = "null_value"
	KeyEmptyValue           = "empty_value"
	KeyTimeZone             = "time_zone"
	KeyReverse              = "reverse"
	KeyRejectTrailingTokens = "reject_trailing_tokens"
	KeyCacheSize            = "cache_size"
	KeySeparator            = "separator"
)

// Config holds the settings a host can tune without code changes.
type Config struct {
	// NullValue is the token that converts to nil. Empty disables it.
	NullValue string `mapstructure:"null_value"`
	// EmptyValue is the token that converts to "". Empty disables it.
	EmptyValue string `mapstructure:"empty_value"`
	// TimeZone is the IANA zone for date/time values without an offset.
	TimeZone string `mapstructure:"time_zone"`
	// Reverse reads queries in reverse Polish notation.
	Reverse bool `mapstructure:"reverse"`
	// RejectTrailingTokens fails queries with tokens left after the expression.
	RejectTrailingTokens bool `mapstructure:"reject_trailing_tokens"`
	// CacheSize bounds the parse cache; 0 disables it.
	CacheSize int `mapstructure:"cache_size"`
	// Separator splits tokens on one character instead of whitespace and
	// quotes. Empty keeps the quoted tokenizer.
	Separator string `mapstructure:"separator"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{TimeZone: "UTC"}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyNullValue, d.NullValue)
	v.SetDefault(KeyEmptyValue, d.EmptyValue)
	v.SetDefault(KeyTimeZone, d.TimeZone)
	v.SetDefault(KeyReverse, d.Reverse)
	v.SetDefault(KeyRejectTrailingTokens, d.RejectTrailingTokens)
	v.SetDefault(KeyCacheSize, d.CacheSize)
	v.SetDefault(KeySeparator, d.Separator)
}

// BindFlags declares the settings on fs. Flag names use dashes
// (--null-value) and normalise to the underscore keys.
func BindFlags(fs *pflag.FlagSet) {
	normalizeFunc := fs.GetNormalizeFunc()
	fs.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		result := normalizeFunc(f, name)
		return pflag.NormalizedName(strings.ReplaceAll(string(result), "-", "_"))
	})

	d := Default()
	fs.String("config", "", "Path to a filter configuration file")
	fs.String("null-value", d.NullValue, "Token that stands for a null value")
	fs.String("empty-value", d.EmptyValue, "Token that stands for an empty string")
	fs.String("time-zone", d.TimeZone, "Time zone for dates and times without an offset")
	fs.Bool("reverse", d.Reverse, "Read filters in reverse Polish notation")
	fs.Bool("reject-trailing-tokens", d.RejectTrailingTokens, "Reject filters with tokens after the expression")
	fs.Int("cache-size", d.CacheSize, "Number of parsed filters to cache (0 disables)")
	fs.String("separator", d.Separator, "Split tokens on this character instead of whitespace")
}

// Load reads the settings from v: defaults, then the file named by the
// "config" key, then FILTERS_* environment variables, then any flags bound to
// v. A nil v uses a fresh viper instance.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read filter configuration %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode filter configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromFlags parses args into fs (declared with BindFlags) and loads the
// settings with the flags taking precedence.
func FromFlags(fs *pflag.FlagSet, args []string) (Config, error) {
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}
	return Load(v)
}

// Validate checks the settings without applying them.
func (c Config) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if utf8.RuneCountInString(c.Separator) > 1 {
		errs = append(errs, filtererrors.Schema(filtererrors.ErrInvalidTokenizer,
			fmt.Sprintf("separator %q must be a single character", c.Separator)))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache size must not be negative, got %d", c.CacheSize))
	}
	return errors.Join(errs...)
}

// Location resolves TimeZone. Empty means UTC.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// ApplySchema sets the sentinels and time zone on o.
func (c Config) ApplySchema(o *schema.Options) error {
	if c.NullValue != "" {
		if err := o.WithNullValue(c.NullValue); err != nil {
			return err
		}
	}
	if c.EmptyValue != "" {
		if err := o.WithEmptyValue(c.EmptyValue); err != nil {
			return err
		}
	}
	loc, err := c.Location()
	if err != nil {
		return err
	}
	o.WithLocation(loc)
	return nil
}

// ParserOptions turns the parser settings into query options.
func (c Config) ParserOptions() ([]query.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []query.Option
	if c.Reverse {
		opts = append(opts, query.WithReverse())
	}
	if c.RejectTrailingTokens {
		opts = append(opts, query.WithTrailingTokens(query.TrailingReject))
	}
	if c.CacheSize > 0 {
		opts = append(opts, query.WithCache(c.CacheSize))
	}
	if c.Separator != "" {
		sep, _ := utf8.DecodeRuneInString(c.Separator)
		opts = append(opts, query.WithTokenizer(query.SeparatorTokenizer{Separator: sep}))
	}
	return opts, nil
}
