package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/sigdata/internal/store"
)

const testOncotree = `{
  "TISSUE": {
    "code": "TISSUE",
    "name": "Tissue",
    "children": {
      "LUNG": {
        "code": "LUNG",
        "name": "Lung",
        "children": {
          "LUAD": {"code": "LUAD", "name": "Lung Adenocarcinoma", "children": {}}
        }
      },
      "BREAST": {
        "code": "BREAST",
        "name": "Breast",
        "children": {
          "BRCA": {"code": "BRCA", "name": "Invasive Breast Carcinoma", "children": {}}
        }
      },
      "SKIN": {"code": "SKIN", "name": "Skin", "children": {}}
    }
  }
}`

const testMeta = "Project\tName\tOncotree Code\tSource\tSeq Type\tPath Samples\tPath Clinical\tPath Counts SBS_96\tPath Counts DBS_78\tPath Counts INDEL_83\tPath Gene Mut\tPath Gene Exp\tPath Gene CNA\n" +
	"P1\tProject One\tLUAD\tTCGA\tWXS\tp1/samples.tsv\tp1/clinical.tsv\tp1/sbs.tsv\tp1/dbs.tsv\t\tp1/gene_mut.tsv\tp1/gene_exp.tsv\tp1/cna.tsv\n" +
	"P2\tProject Two\tBRCA\tICGC\tWGS\n" +
	"P3\tProject Three\tNOPE\tICGC\tWGS\n" +
	"P4\tProject Four\t\tICGC\tWGS\tp4/missing.tsv\n" +
	"P5\tProject Five\tSKIN\tICGC\tWGS\t\t\tp5/sbs.tsv\n"

var testFiles = map[string]string{
	"oncotree.json": testOncotree,
	"meta.tsv":      testMeta,
	"sigs_mapping.tsv": "Project\tSignature Group\tOncotree Code\n" +
		"P1\tLung\tLUAD\n" +
		"P2\tBreast\tBRCA\n" +
		"P1\tPanCan\tTISSUE\n",
	"samples_agg.tsv": "Project\tcount\n" +
		"P1\t4.0\n" +
		"P3\t12\n",

	"p1/samples.tsv": "Sample\tPatient\n" +
		"TCGA-AA-0001-01A\tTCGA-AA-0001\n" +
		"TCGA-AA-0002-01A\tTCGA-AA-0002\n" +
		"TCGA-AA-0003-01A\tTCGA-AA-0003\n" +
		"TCGA-AA-0005-01A\tNA\n",
	"p1/clinical.tsv": "Patient\tAge\tSex\n" +
		"TCGA-AA-0001\t61\tF\n" +
		"TCGA-AA-0003\t70\tM\n",
	"p1/sbs.tsv": "Sample\tA[C>A]A\tA[C>G]A\n" +
		"TCGA-AA-0001-01A-11D\t3\t0\n" +
		"TCGA-AA-0002-01A-11D\t0\t0\n" +
		"TCGA-AA-0003-01A-11D\t0\t0\n" +
		"TCGA-AA-0004-01A-11D\tNA\t1\n",
	"p1/dbs.tsv": "sample_id\tCC>AA\n" +
		"TCGA-AA-0002-01A\t5\n",
	"p1/gene_mut.tsv": "Sample\tGene\n" +
		"TCGA-AA-0001-01A\tTP53\n" +
		"TCGA-AA-0002-01A\tKRAS\n",
	"p1/gene_exp.tsv": "Sample\tTP53\tKRAS\n" +
		"TCGA-AA-0001-01A\t1.5\t0.2\n",
	"p1/cna.tsv": "Gene\tTCGA-AA-0001-01A\tTCGA-AA-0002-01A\n" +
		"TP53\t-1\t0\n" +
		"KRAS\t2\t1\n",

	"p5/sbs.tsv": "Sample\tA[C>A]A\n" +
		"DO1\t1\n" +
		"DO1\t2\n",
}

func writeFixture(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func testConfig(dir string) Config {
	return Config{
		Store:          store.Config{Driver: store.DriverFilesystem, Root: dir},
		MetaKey:        "meta.tsv",
		OncotreeKey:    "oncotree.json",
		SigsMappingKey: "sigs_mapping.tsv",
		SamplesAggKey:  "samples_agg.tsv",
	}
}

func openTestCatalog(t *testing.T, opts Options) (*Catalog, string) {
	t.Helper()
	dir := writeFixture(t, testFiles)
	c, err := Open(context.Background(), testConfig(dir), opts)
	require.NoError(t, err)
	return c, dir
}

func testDataset(t *testing.T, c *Catalog, id string) *Dataset {
	t.Helper()
	d, err := c.Dataset(id)
	require.NoError(t, err)
	return d
}
