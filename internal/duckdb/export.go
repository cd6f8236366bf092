package duckdb

import (
	"context"
	"database/sql"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/sigdata/internal/project"
)

// ExportStats counts the rows written by one export.
type ExportStats struct {
	Samples        int
	MutationCounts int
	ClinicalValues int
}

// ExportProject replaces the exported data of one project with the current
// contents of its files in a single transaction; on failure the previous
// export is left untouched. Zero counts are not stored.
func (s *Store) ExportProject(ctx context.Context, ds *project.Dataset) (ExportStats, error) {
	var stats ExportStats

	summary, err := ds.Summary()
	if err != nil {
		return stats, err
	}
	samples, err := ds.SamplesTable(ctx)
	if err != nil {
		return stats, err
	}
	counts, err := ds.MutationCounts(ctx)
	if err != nil {
		return stats, err
	}
	clinical, err := ds.ClinicalTable(ctx)
	if err != nil {
		return stats, err
	}

	err = s.inTx(ctx, func(conn *sql.Conn) error {
		if err := clearProject(ctx, conn, ds.ID()); err != nil {
			return err
		}

		if _, err := conn.ExecContext(ctx,
			`INSERT INTO projects VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			summary.ID, summary.Name, summary.Source, ds.SeqType(),
			summary.OncotreeCode, summary.OncotreeName, summary.OncotreeTissueCode,
			int64(summary.NumSamples),
		); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}

		if samples != nil {
			patients, hasPatient := samples.Column(project.ColPatient)
			err := appendRows(conn, "samples", func(a *goduckdb.Appender) error {
				for i, sample := range samples.Keys {
					var patient any
					if hasPatient {
						patient = patients[i]
					}
					if err := a.AppendRow(ds.ID(), sample, patient); err != nil {
						return fmt.Errorf("append sample: %w", err)
					}
					stats.Samples++
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		err := appendRows(conn, "mutation_counts", func(a *goduckdb.Appender) error {
			for i, sample := range counts.Samples {
				for c, v := range counts.Values[i] {
					if v == 0 {
						continue
					}
					if err := a.AppendRow(ds.ID(), sample, counts.Categories[c], v); err != nil {
						return fmt.Errorf("append mutation count: %w", err)
					}
					stats.MutationCounts++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		if clinical == nil {
			return nil
		}
		return appendRows(conn, "clinical", func(a *goduckdb.Appender) error {
			for r, sample := range clinical.Keys {
				for c, field := range clinical.Columns {
					if err := a.AppendRow(ds.ID(), sample, field, clinical.Rows[r][c]); err != nil {
						return fmt.Errorf("append clinical value: %w", err)
					}
					stats.ClinicalValues++
				}
			}
			return nil
		})
	})
	if err != nil {
		return ExportStats{}, err
	}
	return stats, nil
}

// ActiveSamples returns the exported samples of a project with at least one
// nonzero count, sorted.
func (s *Store) ActiveSamples(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT sample FROM mutation_counts
		WHERE project = ? AND count <> 0
		ORDER BY sample`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query active samples: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sample string
		if err := rows.Scan(&sample); err != nil {
			return nil, fmt.Errorf("scan active sample: %w", err)
		}
		out = append(out, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active samples: %w", err)
	}
	return out, nil
}

// TotalBurden returns the exported per-sample mutation burden of a project,
// sorted by sample.
func (s *Store) TotalBurden(ctx context.Context, projectID string) ([]project.Burden, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sample, SUM(count) FROM mutation_counts
		WHERE project = ?
		GROUP BY sample
		ORDER BY sample`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query burden: %w", err)
	}
	defer rows.Close()

	var out []project.Burden
	for rows.Next() {
		var b project.Burden
		if err := rows.Scan(&b.Sample, &b.Count); err != nil {
			return nil, fmt.Errorf("scan burden: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate burden: %w", err)
	}
	return out, nil
}

// Projects returns the ids of every exported project, sorted.
func (s *Store) Projects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT project FROM projects ORDER BY project`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
