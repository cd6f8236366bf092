package project

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/inodb/sigdata/internal/oncotree"
	"github.com/inodb/sigdata/internal/store"
	"github.com/inodb/sigdata/internal/table"
)

func loadTestTree(t *testing.T) *oncotree.Tree {
	t.Helper()
	tree, err := oncotree.Load(strings.NewReader(testOncotree))
	require.NoError(t, err)
	return tree
}

func TestParseRegistry(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	reg, err := ParseRegistry(strings.NewReader(testMeta), loadTestTree(t), zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 5, reg.Len())

	p1, err := reg.Get("P1")
	require.NoError(t, err)
	assert.Equal(t, "Project One", p1.Name)
	assert.Equal(t, "TCGA", p1.Source)
	assert.Equal(t, "WXS", p1.SeqType)
	assert.Equal(t, "LUAD", p1.OncotreeCode)
	require.NotNil(t, p1.Oncotree)
	assert.Equal(t, "LUAD", p1.Oncotree.Code)
	assert.Equal(t, "p1/samples.tsv", p1.SamplesPath)
	assert.Equal(t, "p1/sbs.tsv", p1.CountsPaths[SBS])
	assert.Equal(t, "p1/dbs.tsv", p1.CountsPaths[DBS])
	assert.False(t, p1.HasCounts(INDEL))

	p3, err := reg.Get("P3")
	require.NoError(t, err)
	assert.Equal(t, "NOPE", p3.OncotreeCode)
	assert.Nil(t, p3.Oncotree)

	require.Equal(t, 1, logs.Len(), "unresolved code is logged")
	entry := logs.All()[0]
	assert.Equal(t, "unresolved oncotree code", entry.Message)
	assert.Equal(t, "NOPE", entry.ContextMap()["code"])
}

func TestRegistry_Order(t *testing.T) {
	reg, err := ParseRegistry(strings.NewReader(testMeta), loadTestTree(t), nil)
	require.NoError(t, err)

	var ids []string
	for _, m := range reg.All() {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"P1", "P2", "P3", "P4", "P5"}, ids)

	sel, err := reg.Selected([]string{"P3", "P1"})
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, "P3", sel[0].ID)
	assert.Equal(t, "P1", sel[1].ID)

	_, err = reg.Selected([]string{"P1", "NOPE"})
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = reg.Get("NOPE")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestParseRegistry_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing source column", "Project\tName\nP1\tOne\n", 1},
		{"missing name column", "Project\tSource\nP1\tICGC\n", 1},
		{"duplicate id", "Project\tName\tSource\nP1\tOne\tICGC\nP1\tAgain\tICGC\n", 3},
		{"missing id", "Project\tName\tSource\nNA\tOne\tICGC\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry(strings.NewReader(tt.input), loadTestTree(t), nil)
			var pe *table.ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestNormalizer(t *testing.T) {
	tests := []struct {
		name, project, source, raw, want string
	}{
		{"tcga barcode truncated", "TCGA-BRCA", "TCGA", "TCGA-02-0001-01C-01D-0182-01", "TCGA-BRCA TCGA-02-0001-01"},
		{"tcga 20 characters", "P1", "TCGA", "TCGA-02-0001-01C-01D", "P1 TCGA-02-0001-01"},
		{"tcga exactly 15", "TCGA-BRCA", "TCGA", "TCGA-02-0001-01", "TCGA-BRCA TCGA-02-0001-01"},
		{"tcga shorter than 15", "TCGA-BRCA", "TCGA", "TCGA-02-0001", "TCGA-BRCA TCGA-02-0001"},
		{"other source untouched", "ICGC-X", "ICGC", "SA-0123456789012345", "ICGC-X SA-0123456789012345"},
		{"source is case sensitive", "P", "tcga", "TCGA-02-0001-01C-01D", "P TCGA-02-0001-01C-01D"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.project, tt.source)
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestNormalizer_SuffixIdempotent(t *testing.T) {
	n := NewNormalizer("P", SourceTCGA)
	raw := "TCGA-02-0001-01C-01D-0182-01"
	once := n.Suffix(raw)
	assert.Equal(t, once, n.Suffix(once))
	assert.Len(t, once, 15)
}

func TestNormalizer_MissingCell(t *testing.T) {
	n := NewNormalizer("P", "ICGC")
	assert.Equal(t, "", n.normalizeCell(""))
	assert.Equal(t, "NA", n.normalizeCell("NA"))
	assert.Equal(t, "P S1", n.normalizeCell("S1"))
}

func TestParseSignatureMappings_MissingColumn(t *testing.T) {
	_, err := ParseSignatureMappings(strings.NewReader("Project\tOncotree Code\nP1\tLUAD\n"))
	var pe *table.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Message, ColSignatureGroup)
}

func TestSignatureMappings_NilResolve(t *testing.T) {
	var sm *SignatureMappings
	out, err := sm.Resolve("P1", loadTestTree(t))
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestParseAggregates(t *testing.T) {
	agg, err := ParseAggregates(strings.NewReader("Project\tcount\nP1\t3\nP2\t7.0\nP3\tNA\n"))
	require.NoError(t, err)

	n, ok := agg.Count("P2")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = agg.Count("P3")
	assert.False(t, ok)

	_, err = ParseAggregates(strings.NewReader("Project\tcount\nP1\tmany\n"))
	var pe *table.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)

	_, err = ParseAggregates(strings.NewReader("Project\tn\nP1\t3\n"))
	assert.Error(t, err)
}

func TestParseMutationType(t *testing.T) {
	mt, err := ParseMutationType("indel")
	require.NoError(t, err)
	assert.Equal(t, INDEL, mt)
	assert.Equal(t, "INDEL_83", mt.CategoryType())
	assert.Equal(t, "Path Counts SBS_96", SBS.countsPathColumn())

	_, err = ParseMutationType("MNV")
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	c, _ := openTestCatalog(t, Options{})

	assert.Equal(t, 5, c.Registry().Len())
	assert.Equal(t, "TISSUE", c.Tree().Root().Code)
	assert.Len(t, c.All(), 5)

	sel, err := c.Selected([]string{"P2", "P1"})
	require.NoError(t, err)
	assert.Equal(t, "P2", sel[0].ID())
	assert.Equal(t, "P1", sel[1].ID())

	_, err = c.Dataset("NOPE")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, []TissueType{
		{Name: "Lung", Code: "LUNG"},
		{Name: "Breast", Code: "BREAST"},
		{Name: "Skin", Code: "SKIN"},
	}, c.TissueTypes())
}

func TestCatalog_Summaries(t *testing.T) {
	c, _ := openTestCatalog(t, Options{})
	sums, err := c.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, sums, 5)

	p1 := sums[0]
	assert.Equal(t, "P1", p1.ID)
	assert.Equal(t, "Project One", p1.Name)
	assert.Equal(t, 4, p1.NumSamples)
	assert.True(t, p1.HasClinical)
	assert.True(t, p1.HasGeneCNA)
	assert.Len(t, p1.SigsMapping, 2)
	assert.Equal(t, "LUAD", p1.OncotreeCode)
	assert.Equal(t, "Lung Adenocarcinoma", p1.OncotreeName)
	assert.Equal(t, "LUNG", p1.OncotreeTissueCode)

	p3 := sums[2]
	assert.Equal(t, "NOPE", p3.OncotreeCode)
	assert.Equal(t, "nan", p3.OncotreeName)
	assert.Equal(t, "nan", p3.OncotreeTissueCode)
	assert.NotNil(t, p3.SigsMapping)

	p4 := sums[3]
	assert.Equal(t, "nan", p4.OncotreeCode)
	assert.Equal(t, 0, p4.NumSamples)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	dir := writeFixture(t, testFiles)

	cfg := testConfig(dir)
	cfg.MetaKey = "absent.tsv"
	_, err := Open(ctx, cfg, Options{})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	cfg = testConfig(dir)
	cfg.OncotreeKey = "meta.tsv"
	_, err = Open(ctx, cfg, Options{})
	assert.Error(t, err)

	cfg = testConfig(dir)
	cfg.Store.Root = dir + "/nope"
	_, err = Open(ctx, cfg, Options{})
	assert.Error(t, err)

	cfg = testConfig(dir)
	cfg.SigsMappingKey = ""
	cfg.SamplesAggKey = ""
	c, err := Open(ctx, cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, testDataset(t, c, "P1").SampleCount())
}
