package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/inodb/sigdata/internal/cache"
	"github.com/inodb/sigdata/internal/store"
)

const configName = ".sigdata.yaml"

// setting is one recognised configuration key. The type of def decides how
// values given to `config set` are parsed.
type setting struct {
	key   string
	def   any
	usage string
}

var settings = []setting{
	{"data.dir", ".", "directory holding the data files (fs driver)"},
	{"data.meta", "meta.tsv", "project metadata table"},
	{"data.oncotree", "oncotree.json", "OncoTree taxonomy"},
	{"data.sigs_mapping", "", "signature group mapping table (optional)"},
	{"data.samples_agg", "", "per-project sample count table (optional)"},
	{"store.driver", string(store.DriverFilesystem), "data store driver: fs or s3"},
	{"store.s3.bucket", "", "S3 bucket"},
	{"store.s3.prefix", "", "key prefix inside the bucket"},
	{"store.s3.region", "us-east-1", "S3 region"},
	{"store.s3.endpoint", "", "custom endpoint, e.g. MinIO"},
	{"store.s3.path_style", false, "use path-style addressing"},
	{"store.s3.access_key_id", "", "static access key (default credential chain when empty)"},
	{"store.s3.secret_access_key", "", "static secret key"},
	{"store.s3.session_token", "", "static session token"},
	{"cache.enabled", false, "memoize loaded tables"},
	{"cache.size", cache.DefaultSize, "maximum number of cached tables"},
}

func setDefaults() {
	for _, s := range settings {
		viper.SetDefault(s.key, s.def)
	}
}

func lookupSetting(key string) (setting, error) {
	for _, s := range settings {
		if s.key == key {
			return s, nil
		}
	}
	return setting{}, fmt.Errorf("unknown config key %q (see 'sigdata config keys')", key)
}

// parse converts a command-line value to the setting's type.
func (s setting) parse(value string) (any, error) {
	switch s.def.(type) {
	case bool:
		switch strings.ToLower(value) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s expects a boolean, got %q", s.key, value)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s expects an integer, got %q", s.key, value)
		}
		return n, nil
	default:
		return value, nil
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sigdata configuration",
		Long:  "Show the effective configuration, or get and set values in ~/" + configName + " (or the file given with --config).",
		Example: `  sigdata config                                # effective settings as YAML
  sigdata config keys                           # recognised keys and defaults
  sigdata config set data.dir /data/mutational-signatures
  sigdata config set store.driver s3
  sigdata config get data.meta`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(viper.AllSettings())
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List recognised configuration keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeSettings(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := lookupSetting(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), viper.Get(args[0]))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.OutOrStdout(), args[0], args[1])
		},
	})

	return cmd
}

func writeSettings(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tDEFAULT\tVALUE\tDESCRIPTION")
	for _, s := range settings {
		fmt.Fprintf(tw, "%s\t%v\t%v\t%s\n", s.key, s.def, viper.Get(s.key), s.usage)
	}
	return tw.Flush()
}

// configPath returns the file `config set` writes to.
func configPath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName), nil
}

// setConfigValue updates one key in the config file. Only the file's own
// contents are written back, never defaults, flags or environment values.
func setConfigValue(w io.Writer, key, raw string) error {
	s, err := lookupSetting(key)
	if err != nil {
		return err
	}
	value, err := s.parse(raw)
	if err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	file := viper.New()
	file.SetConfigFile(path)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	file.Set(key, value)
	if err := file.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	viper.Set(key, value)

	fmt.Fprintf(w, "Set %s = %v in %s\n", key, value, path)
	return nil
}
