package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/gbtranslate/internal/format"
	"github.com/inodb/gbtranslate/internal/translate"
)

// Configuration keys.
const (
	keyPermissive     = "translate.permissive"
	keyOneLetter      = "display.one_letter"
	keyWorkers        = "render.workers"
	keySkipIncomplete = "catalog.skip_incomplete"
	keyCacheEnabled   = "cache.enabled"
	keyCacheDir       = "cache.dir"
	keyAPIKey         = "fetch.api_key"
)

// configKey describes one supported configuration key.
type configKey struct {
	name  string
	kind  string // bool, int or string
	usage string
}

var configKeys = []configKey{
	{keyPermissive, "bool", "read N as A instead of rejecting it"},
	{keyOneLetter, "bool", "one-letter amino acid codes"},
	{keyWorkers, "int", "worker goroutines for multi-gene rendering, 0 = all CPUs"},
	{keySkipIncomplete, "bool", "skip CDS features without protein_id or product"},
	{keyCacheEnabled, "bool", "cache parsed records"},
	{keyCacheDir, "string", "record cache directory"},
	{keyAPIKey, "string", "NCBI API key for fetch"},
}

func lookupConfigKey(name string) (configKey, bool) {
	for _, k := range configKeys {
		if k.name == name {
			return k, true
		}
	}
	return configKey{}, false
}

// parse converts a command-line value to the key's type.
func (k configKey) parse(value string) (any, error) {
	switch k.kind {
	case "bool":
		switch strings.ToLower(value) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, fmt.Errorf("expected a boolean, got %q", value)
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("expected a non-negative integer, got %q", value)
		}
		return n, nil
	}
	return value, nil
}

// initConfig loads ~/.gbtranslate.yaml (or cfgFile) and GBTRANSLATE_*
// environment variables into viper.
func initConfig(cfgFile string) error {
	viper.SetDefault(keyPermissive, false)
	viper.SetDefault(keyOneLetter, false)
	viper.SetDefault(keyWorkers, 0)
	viper.SetDefault(keySkipIncomplete, false)
	viper.SetDefault(keyCacheEnabled, false)
	viper.SetDefault(keyCacheDir, defaultCacheDir())
	viper.SetDefault(keyAPIKey, "")

	viper.SetEnvPrefix("GBTRANSLATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".gbtranslate")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	logger.Debug("loaded config", zap.String("file", viper.ConfigFileUsed()))
	return nil
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".gbtranslate", "cache")
}

// newLogger builds a console logger on stderr. Warnings and errors are
// shown by default, debug messages with --verbose.
func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

// bindFlags binds command flags to config keys. Flags that were not set on
// the command line fall back to the config file and environment.
func bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// options are the resolved settings for one run.
type options struct {
	permissive     bool
	oneLetter      bool
	workers        int
	skipIncomplete bool
	cacheEnabled   bool
	cacheDir       string
	// stdin is parsed when the input path is "-".
	stdin io.Reader
}

func loadOptions(stdin io.Reader) options {
	return options{
		stdin:          stdin,
		permissive:     viper.GetBool(keyPermissive),
		oneLetter:      viper.GetBool(keyOneLetter),
		workers:        viper.GetInt(keyWorkers),
		skipIncomplete: viper.GetBool(keySkipIncomplete),
		cacheEnabled:   viper.GetBool(keyCacheEnabled),
		cacheDir:       viper.GetString(keyCacheDir),
	}
}

func (o options) policy() translate.BasePolicy {
	if o.permissive {
		return translate.Permissive
	}
	return translate.Strict
}

func (o options) formatter() *format.Formatter {
	return format.New(translate.NewTranslator(o.policy()), o.oneLetter)
}
