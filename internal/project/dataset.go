package project

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/sigdata/internal/cache"
	"github.com/inodb/sigdata/internal/table"
)

// Dataset gives access to one project's data. It holds only metadata; every
// accessor loads and normalizes the underlying files afresh (or from the
// fingerprint-validated cache) and returns a new table the caller owns.
//
// Accessors for a data kind the project does not have return nil and no error.
type Dataset struct {
	meta *Metadata
	cat  *Catalog
	norm Normalizer
}

func newDataset(meta *Metadata, cat *Catalog) *Dataset {
	return &Dataset{
		meta: meta,
		cat:  cat,
		norm: NewNormalizer(meta.ID, meta.Source),
	}
}

// Metadata returns the project's metadata row.
func (d *Dataset) Metadata() *Metadata { return d.meta }

// ID returns the project id.
func (d *Dataset) ID() string { return d.meta.ID }

// Name returns the project display name.
func (d *Dataset) Name() string { return d.meta.Name }

// Source returns the originating data provider.
func (d *Dataset) Source() string { return d.meta.Source }

// SeqType returns the sequencing type.
func (d *Dataset) SeqType() string { return d.meta.SeqType }

// Normalizer returns the project's sample identifier normalizer.
func (d *Dataset) Normalizer() Normalizer { return d.norm }

func (d *Dataset) HasSamples() bool               { return d.meta.HasSamples() }
func (d *Dataset) HasClinical() bool              { return d.meta.HasClinical() }
func (d *Dataset) HasCounts(mt MutationType) bool { return d.meta.HasCounts(mt) }
func (d *Dataset) HasGeneMutation() bool          { return d.meta.HasGeneMut() }
func (d *Dataset) HasGeneExpression() bool        { return d.meta.HasGeneExp() }
func (d *Dataset) HasGeneCopyNumber() bool        { return d.meta.HasGeneCNA() }

// TaxonomyCode returns the OncoTree code given in the metadata, resolved or not.
func (d *Dataset) TaxonomyCode() (string, bool) {
	return d.meta.OncotreeCode, d.meta.OncotreeCode != ""
}

// TaxonomyName returns the display name of the project's OncoTree node.
func (d *Dataset) TaxonomyName() (string, bool) {
	if d.meta.Oncotree == nil {
		return "", false
	}
	return d.meta.Oncotree.Name, true
}

// TissueCode returns the code of the project's tissue-level ancestor.
func (d *Dataset) TissueCode() (string, bool) {
	if d.meta.Oncotree == nil {
		return "", false
	}
	n, ok := d.cat.tree.TissueAncestorOf(d.meta.Oncotree)
	if !ok {
		return "", false
	}
	return n.Code, true
}

// SampleCount returns the precomputed sample count. A project missing from
// the aggregate table has zero observed samples.
func (d *Dataset) SampleCount() int {
	if n, ok := d.cat.aggregates.Count(d.meta.ID); ok {
		return n
	}
	return 0
}

// SignatureGroupMappings returns the project's signature-group associations.
// A mapping that references an unknown OncoTree code is a fatal error.
func (d *Dataset) SignatureGroupMappings() ([]SignatureMapping, error) {
	return d.cat.mappings.Resolve(d.meta.ID, d.cat.tree)
}

// load reads the file at key and applies prepare, going through the cache
// when one is configured. Every failure is reported as a *LoadError.
func (d *Dataset) load(ctx context.Context, kind Kind, category, key string, prepare func(*table.Frame) error) (*table.Frame, error) {
	fetch := func(ctx context.Context) (*table.Frame, error) {
		rc, err := d.cat.store.Open(ctx, key)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		f, err := table.Read(rc)
		if err != nil {
			return nil, err
		}
		if err := prepare(f); err != nil {
			return nil, err
		}
		d.cat.logger.Debug("loaded table",
			zap.String("project", d.meta.ID),
			zap.String("kind", string(kind)),
			zap.String("key", key),
			zap.Int("rows", f.Len()))
		return f, nil
	}

	var (
		f   *table.Frame
		err error
	)
	if d.cat.cache != nil {
		ck := cache.Key{Project: d.meta.ID, Kind: string(kind), Category: category}
		f, err = d.cat.cache.Get(ctx, ck, []string{key}, fetch)
	} else {
		f, err = fetch(ctx)
	}
	if err != nil {
		return nil, d.loadError(kind, key, err)
	}
	return f, nil
}

func (d *Dataset) loadError(kind Kind, key string, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return err
	}
	return &LoadError{Project: d.meta.ID, Kind: kind, Key: key, Err: err}
}

// SamplesTable returns the samples table indexed by normalized sample id,
// with the patient column normalized the same way.
func (d *Dataset) SamplesTable(ctx context.Context) (*table.Frame, error) {
	if !d.HasSamples() {
		return nil, nil
	}
	return d.load(ctx, KindSamples, "", d.meta.SamplesPath, func(f *table.Frame) error {
		if err := f.MapColumn(ColSample, d.norm.normalizeCell); err != nil {
			return err
		}
		if err := f.MapColumn(ColPatient, d.norm.normalizeCell); err != nil {
			return err
		}
		return f.SetIndex(ColSample)
	})
}

// CountsTable returns one mutation type's count table indexed by normalized
// sample id. The first column of the file is taken as the sample id; rows
// with a missing value in any category are dropped.
func (d *Dataset) CountsTable(ctx context.Context, mt MutationType) (*table.Frame, error) {
	if !d.HasCounts(mt) {
		return nil, nil
	}
	return d.load(ctx, KindCounts, string(mt), d.meta.CountsPaths[mt], func(f *table.Frame) error {
		if len(f.Columns) == 0 {
			return fmt.Errorf("counts table has no columns")
		}
		if err := f.RenameColumn(f.Columns[0], ColSample); err != nil {
			return err
		}
		if err := f.SetIndex(ColSample); err != nil {
			return err
		}
		f.MapKeys(d.norm.Normalize)
		f.DropMissingRows()
		return nil
	})
}

// MutationCounts merges every available count table into one matrix.
// A project without count tables yields an empty matrix.
func (d *Dataset) MutationCounts(ctx context.Context) (*CountMatrix, error) {
	var tables []countTable
	for _, mt := range MutationTypes {
		if !d.HasCounts(mt) {
			continue
		}
		f, err := d.CountsTable(ctx, mt)
		if err != nil {
			return nil, err
		}
		rows, err := parseCounts(f)
		if err != nil {
			return nil, d.loadError(KindCounts, d.meta.CountsPaths[mt], err)
		}
		tables = append(tables, countTable{
			mt:         mt,
			key:        d.meta.CountsPaths[mt],
			categories: f.Columns,
			rows:       rows,
		})
	}

	m, err := mergeCounts(tables)
	if err != nil {
		return nil, &LoadError{Project: d.meta.ID, Kind: KindCounts, Key: countKeys(tables), Err: err}
	}
	return m, nil
}

func countKeys(tables []countTable) string {
	s := ""
	for i, t := range tables {
		if i > 0 {
			s += ","
		}
		s += t.key
	}
	return s
}

// ActiveSampleIDs returns the normalized ids of samples with at least one
// nonzero count in any mutation type, in sorted order.
func (d *Dataset) ActiveSampleIDs(ctx context.Context) ([]string, error) {
	m, err := d.MutationCounts(ctx)
	if err != nil {
		return nil, err
	}
	if m.Samples == nil {
		return []string{}, nil
	}
	return m.Samples, nil
}

// TotalMutationBurden returns, per active sample, the sum of its counts
// across all categories.
func (d *Dataset) TotalMutationBurden(ctx context.Context) ([]Burden, error) {
	m, err := d.MutationCounts(ctx)
	if err != nil {
		return nil, err
	}
	return m.Totals(), nil
}

// ClinicalTable returns the active samples joined with their patients'
// clinical data, indexed by sample id. Values the join could not fill are
// the string "nan". Requires both a samples and a clinical file.
func (d *Dataset) ClinicalTable(ctx context.Context) (*table.Frame, error) {
	if !d.HasSamples() || !d.HasClinical() {
		return nil, nil
	}

	samples, err := d.SamplesTable(ctx)
	if err != nil {
		return nil, err
	}
	active, err := d.ActiveSampleIDs(ctx)
	if err != nil {
		return nil, err
	}
	activeSet := make(map[string]bool, len(active))
	for _, s := range active {
		activeSet[s] = true
	}
	samples.FilterKeys(func(k string) bool { return activeSet[k] })
	samples.ResetIndex()

	clinical, err := d.load(ctx, KindClinical, "", d.meta.ClinicalPath, func(f *table.Frame) error {
		return f.MapColumn(ColPatient, d.norm.normalizeCell)
	})
	if err != nil {
		return nil, err
	}

	joined, err := leftJoin(samples, clinical, ColPatient)
	if err != nil {
		return nil, d.loadError(KindClinical, d.meta.ClinicalPath, err)
	}
	joined.FillMissing(table.Missing)
	if err := joined.SetIndex(ColSample); err != nil {
		return nil, d.loadError(KindClinical, d.meta.ClinicalPath, err)
	}
	return joined, nil
}

// GeneMutationTable returns the gene mutation table with normalized sample ids.
func (d *Dataset) GeneMutationTable(ctx context.Context) (*table.Frame, error) {
	if !d.HasGeneMutation() {
		return nil, nil
	}
	return d.load(ctx, KindGeneMut, "", d.meta.GeneMutPath, d.normalizeSampleColumn)
}

// GeneExpressionTable returns the gene expression table with normalized sample ids.
func (d *Dataset) GeneExpressionTable(ctx context.Context) (*table.Frame, error) {
	if !d.HasGeneExpression() {
		return nil, nil
	}
	return d.load(ctx, KindGeneExp, "", d.meta.GeneExpPath, d.normalizeSampleColumn)
}

func (d *Dataset) normalizeSampleColumn(f *table.Frame) error {
	return f.MapColumn(ColSample, d.norm.normalizeCell)
}

// GeneCopyNumberTable returns the copy-number table reoriented sample-major:
// the file has one row per gene (first column) and one column per sample;
// the result has one row per normalized sample id and one column per gene.
func (d *Dataset) GeneCopyNumberTable(ctx context.Context) (*table.Frame, error) {
	if !d.HasGeneCopyNumber() {
		return nil, nil
	}
	return d.load(ctx, KindGeneCNA, "", d.meta.GeneCNAPath, func(f *table.Frame) error {
		if len(f.Columns) == 0 {
			return fmt.Errorf("copy number table has no columns")
		}
		if err := f.SetIndex(f.Columns[0]); err != nil {
			return err
		}
		t, err := f.Transpose(ColSample)
		if err != nil {
			return err
		}
		t.MapKeys(d.norm.Normalize)
		*f = *t
		return nil
	})
}
