package filters

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nlstn/go-filters/internal/config"
	"github.com/nlstn/go-filters/internal/query"
)

// Config holds the parser and registry settings read from flags, FILTERS_*
// environment variables and an optional configuration file.
type Config = config.Config

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads the settings from v. A nil v reads defaults and the
// environment only.
func LoadConfig(v *viper.Viper) (Config, error) {
	return config.Load(v)
}

// BindConfigFlags declares the settings as flags on fs.
func BindConfigFlags(fs *pflag.FlagSet) {
	config.BindFlags(fs)
}

// ConfigFromFlags parses args into fs, declared with BindConfigFlags, and
// loads the settings with the flags taking precedence.
func ConfigFromFlags(fs *pflag.FlagSet, args []string) (Config, error) {
	return config.FromFlags(fs, args)
}

// NewConfiguredParser applies cfg to opts and creates a parser with the
// configured options followed by extra.
func NewConfiguredParser(cfg Config, opts *Options, extra ...ParserOption) (*Parser, error) {
	if opts == nil {
		return query.NewParser(nil)
	}
	if err := cfg.ApplySchema(opts); err != nil {
		return nil, err
	}
	parserOpts, err := cfg.ParserOptions()
	if err != nil {
		return nil, err
	}
	return query.NewParser(opts, append(parserOpts, extra...)...)
}
