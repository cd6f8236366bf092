// Package main provides the sigdata command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/sigdata/internal/project"
	"github.com/inodb/sigdata/internal/store"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// app holds state shared by subcommands for one invocation.
type app struct {
	cfgFile string
	verbose bool
	format  string

	logger  *zap.Logger
	metrics *prometheus.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "sigdata",
		Short: "Integrate mutational signature project data",
		Long: `sigdata loads the project metadata table and OncoTree taxonomy, and
serves each project's samples, mutation counts, clinical and gene-level
tables keyed by normalized sample id.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(a.cfgFile); err != nil {
				return err
			}
			logger, err := newLogger(a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logMetrics()
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/"+configName+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVarP(&a.format, "format", "f", formatJSON, "Output format for tables: json, tsv")
	flags.String("data-dir", "", "Directory holding the data files (fs store driver)")
	flags.Bool("cache", false, "Memoize loaded tables for the lifetime of the command")
	_ = viper.BindPFlag("data.dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("cache.enabled", flags.Lookup("cache"))

	cmd.AddCommand(newProjectsCmd(a))
	cmd.AddCommand(newTissuesCmd(a))
	cmd.AddCommand(newSamplesCmd(a))
	cmd.AddCommand(newBurdenCmd(a))
	cmd.AddCommand(newClinicalCmd(a))
	cmd.AddCommand(newCountsCmd(a))
	cmd.AddCommand(newGeneCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads the config file, if any, and environment overrides
// (SIGDATA_DATA_DIR etc.).
func initConfig(cfgFile string) error {
	setDefaults()
	viper.SetEnvPrefix("SIGDATA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.SetConfigFile(filepath.Join(home, configName))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && (errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// catalogConfig assembles the catalog configuration from viper settings.
func catalogConfig() project.Config {
	return project.Config{
		Store: store.Config{
			Driver: store.Driver(viper.GetString("store.driver")),
			Root:   viper.GetString("data.dir"),
			S3: store.S3Config{
				Bucket:          viper.GetString("store.s3.bucket"),
				Prefix:          viper.GetString("store.s3.prefix"),
				Region:          viper.GetString("store.s3.region"),
				Endpoint:        viper.GetString("store.s3.endpoint"),
				AccessKeyID:     viper.GetString("store.s3.access_key_id"),
				SecretAccessKey: viper.GetString("store.s3.secret_access_key"),
				SessionToken:    viper.GetString("store.s3.session_token"),
				PathStyle:       viper.GetBool("store.s3.path_style"),
			},
		},
		MetaKey:        viper.GetString("data.meta"),
		OncotreeKey:    viper.GetString("data.oncotree"),
		SigsMappingKey: viper.GetString("data.sigs_mapping"),
		SamplesAggKey:  viper.GetString("data.samples_agg"),
	}
}

// openCatalog loads the project catalog described by the current config.
func (a *app) openCatalog(cmd *cobra.Command) (*project.Catalog, error) {
	opts := project.Options{
		Logger:       a.logger,
		CacheEnabled: viper.GetBool("cache.enabled"),
		CacheSize:    viper.GetInt("cache.size"),
	}
	if opts.CacheEnabled {
		a.metrics = prometheus.NewRegistry()
		opts.Registerer = a.metrics
	}
	return project.Open(cmd.Context(), catalogConfig(), opts)
}

// logMetrics reports cache counters at debug level.
func (a *app) logMetrics() {
	if a.metrics == nil || a.logger == nil {
		return
	}
	families, err := a.metrics.Gather()
	if err != nil {
		a.logger.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			a.logger.Debug("metric",
				zap.String("name", mf.GetName()),
				zap.Float64("value", m.GetCounter().GetValue()))
		}
	}
}
