package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/sigdata/internal/duckdb"
	"github.com/inodb/sigdata/internal/project"
	"github.com/inodb/sigdata/internal/table"
)

func newProjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects [project-id...]",
		Short: "List project summaries",
		Long:  "List the summary of every project, or of the given projects in the given order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCatalog(cmd)
			if err != nil {
				return err
			}
			datasets := c.All()
			if len(args) > 0 {
				if datasets, err = c.Selected(args); err != nil {
					return err
				}
			}
			out := make([]project.Summary, 0, len(datasets))
			for _, ds := range datasets {
				s, err := ds.Summary()
				if err != nil {
					return err
				}
				out = append(out, s)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newTissuesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tissues",
		Short: "List tissue-level OncoTree nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCatalog(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), c.TissueTypes())
		},
	}
}

// datasetCmd builds a command that takes a project id as first argument.
func datasetCmd(a *app, use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, ds *project.Dataset, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCatalog(cmd)
			if err != nil {
				return err
			}
			ds, err := c.Dataset(args[0])
			if err != nil {
				return err
			}
			return run(cmd, ds, args[1:])
		},
	}
}

func (a *app) writeTable(cmd *cobra.Command, ds *project.Dataset, kind string, f *table.Frame) error {
	if f == nil {
		return fmt.Errorf("project %s has no %s data", ds.ID(), kind)
	}
	return writeFrame(cmd.OutOrStdout(), f, a.format)
}

func newSamplesCmd(a *app) *cobra.Command {
	var active bool
	cmd := datasetCmd(a, "samples <project-id>", "Show a project's samples table", cobra.ExactArgs(1),
		func(cmd *cobra.Command, ds *project.Dataset, _ []string) error {
			if active {
				ids, err := ds.ActiveSampleIDs(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), ids)
			}
			f, err := ds.SamplesTable(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeTable(cmd, ds, "samples", f)
		})
	cmd.Flags().BoolVar(&active, "active", false, "List only the ids of samples with at least one mutation")
	return cmd
}

func newBurdenCmd(a *app) *cobra.Command {
	return datasetCmd(a, "burden <project-id>", "Show total mutation burden per active sample", cobra.ExactArgs(1),
		func(cmd *cobra.Command, ds *project.Dataset, _ []string) error {
			b, err := ds.TotalMutationBurden(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), b)
		})
}

func newClinicalCmd(a *app) *cobra.Command {
	return datasetCmd(a, "clinical <project-id>", "Show clinical data of the active samples", cobra.ExactArgs(1),
		func(cmd *cobra.Command, ds *project.Dataset, _ []string) error {
			f, err := ds.ClinicalTable(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeTable(cmd, ds, "clinical", f)
		})
}

func newCountsCmd(a *app) *cobra.Command {
	cmd := datasetCmd(a, "counts <project-id> [SBS|DBS|INDEL]", "Show mutation counts", cobra.RangeArgs(1, 2),
		func(cmd *cobra.Command, ds *project.Dataset, args []string) error {
			if len(args) == 0 {
				m, err := ds.MutationCounts(cmd.Context())
				if err != nil {
					return err
				}
				return writeFrame(cmd.OutOrStdout(), matrixFrame(m), a.format)
			}
			mt, err := project.ParseMutationType(args[0])
			if err != nil {
				return err
			}
			f, err := ds.CountsTable(cmd.Context(), mt)
			if err != nil {
				return err
			}
			return a.writeTable(cmd, ds, string(mt)+" counts", f)
		})
	cmd.Long = "Show one mutation type's count table, or all types merged when no type is given."
	return cmd
}

func newGeneCmd(a *app) *cobra.Command {
	return datasetCmd(a, "gene <project-id> <mut|exp|cna>", "Show a gene-level table", cobra.ExactArgs(2),
		func(cmd *cobra.Command, ds *project.Dataset, args []string) error {
			var (
				f   *table.Frame
				err error
			)
			switch args[0] {
			case "mut":
				f, err = ds.GeneMutationTable(cmd.Context())
			case "exp":
				f, err = ds.GeneExpressionTable(cmd.Context())
			case "cna":
				f, err = ds.GeneCopyNumberTable(cmd.Context())
			default:
				return fmt.Errorf("unknown gene table %q (want mut, exp or cna)", args[0])
			}
			if err != nil {
				return err
			}
			return a.writeTable(cmd, ds, "gene "+args[0], f)
		})
}

func newExportCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "export [project-id...]",
		Short: "Export integrated project tables to DuckDB",
		Long:  "Export the samples, merged mutation counts and clinical tables of every project (or the given projects) into a DuckDB database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.openCatalog(cmd)
			if err != nil {
				return err
			}
			datasets := c.All()
			if len(args) > 0 {
				if datasets, err = c.Selected(args); err != nil {
					return err
				}
			}

			db, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, ds := range datasets {
				stats, err := db.ExportProject(cmd.Context(), ds)
				if err != nil {
					return fmt.Errorf("export %s: %w", ds.ID(), err)
				}
				a.logger.Info("exported project",
					zap.String("project", ds.ID()),
					zap.Int("samples", stats.Samples),
					zap.Int("mutation_counts", stats.MutationCounts),
					zap.Int("clinical_values", stats.ClinicalValues))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d projects to %s\n", len(datasets), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "sigdata.duckdb", "DuckDB database path")
	return cmd
}
