package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	var keys strings.Builder
	for _, k := range configKeys {
		fmt.Fprintf(&keys, "  %-24s %-7s %s\n", k.name, k.kind, k.usage)
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gbtranslate configuration",
		Long: `Show, get, or set configuration values. Config is stored in ~/.gbtranslate.yaml
and every key can be overridden with GBTRANSLATE_<SECTION>_<NAME>.

Keys:
` + keys.String(),
		Example: `  gbtranslate config                              # show all keys
  gbtranslate config set display.one_letter true  # one-letter codes by default
  gbtranslate config set render.workers 4
  gbtranslate config get cache.dir`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd.OutOrStdout(), args[0])
		},
	}
}

// knownKey returns the configKey for name or a usage error listing the
// supported keys.
func knownKey(name string) (configKey, error) {
	if k, ok := lookupConfigKey(name); ok {
		return k, nil
	}
	names := make([]string, len(configKeys))
	for i, k := range configKeys {
		names[i] = k.name
	}
	return configKey{}, &usageError{fmt.Errorf("unknown config key %q (known keys: %s)", name, strings.Join(names, ", "))}
}

// runConfigShow prints the effective value of every key, grouped by section.
func runConfigShow(w io.Writer) error {
	settings := make(map[string]map[string]any)
	for _, k := range configKeys {
		section, name, _ := strings.Cut(k.name, ".")
		if settings[section] == nil {
			settings[section] = make(map[string]any)
		}
		settings[section][name] = viper.Get(k.name)
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(w, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(w, "# No config file found, showing defaults. Config file: ~/.gbtranslate.yaml")
	}
	fmt.Fprint(w, string(out))
	return nil
}

// runConfigSet validates value against the key's type and stores it in the
// config file. Only keys already in the file and the new key are written,
// so defaults and environment overrides never leak into it.
func runConfigSet(w io.Writer, key, value string) error {
	k, err := knownKey(key)
	if err != nil {
		return err
	}
	v, err := k.parse(value)
	if err != nil {
		return &usageError{fmt.Errorf("%s: %w", key, err)}
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".gbtranslate.yaml")
	}

	settings, err := readConfigFile(cfgFile)
	if err != nil {
		return err
	}
	section, name, _ := strings.Cut(key, ".")
	values, _ := settings[section].(map[string]any)
	if values == nil {
		values = make(map[string]any)
		settings[section] = values
	}
	values[name] = v

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(cfgFile, out, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	viper.Set(key, v)

	fmt.Fprintf(w, "Set %s = %v in %s\n", key, v, cfgFile)
	return nil
}

func readConfigFile(path string) (map[string]any, error) {
	settings := make(map[string]any)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if settings == nil {
		settings = make(map[string]any)
	}
	return settings, nil
}

func runConfigGet(w io.Writer, key string) error {
	if _, err := knownKey(key); err != nil {
		return err
	}
	fmt.Fprintln(w, viper.Get(key))
	return nil
}
