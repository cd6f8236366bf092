// Package project integrates per-project data files into sample-indexed
// tables and resolves each project's OncoTree classification.
package project

import (
	"fmt"
	"strings"
)

// Metadata table columns. The first column of the metadata table is the
// project id regardless of its header.
const (
	ColProject      = "Project"
	ColName         = "Name"
	ColOncotreeCode = "Oncotree Code"
	ColSource       = "Source"
	ColSeqType      = "Seq Type"
	ColPathSamples  = "Path Samples"
	ColPathClinical = "Path Clinical"
	ColPathGeneMut  = "Path Gene Mut"
	ColPathGeneExp  = "Path Gene Exp"
	ColPathGeneCNA  = "Path Gene CNA"

	colPathCountsFmt = "Path Counts %s"
)

// Per-sample table columns.
const (
	ColSample  = "Sample"
	ColPatient = "Patient"
)

// Signature mapping and aggregate table columns.
const (
	ColSignatureGroup = "Signature Group"
	ColCount          = "count"
)

// SourceTCGA is the data source whose sample barcodes are truncated so that
// PanCanAtlas and cBioPortal identifiers of the same sample line up.
const SourceTCGA = "TCGA"

// tcgaBarcodeLength is the length of a TCGA sample barcode without the
// vial/portion/analyte suffix (e.g. "TCGA-02-0001-01").
const tcgaBarcodeLength = 15

// MutationType is a recognized mutation type with its own count matrix.
type MutationType string

const (
	SBS   MutationType = "SBS"
	DBS   MutationType = "DBS"
	INDEL MutationType = "INDEL"
)

// MutationTypes lists the recognized mutation types in merge order.
var MutationTypes = []MutationType{SBS, DBS, INDEL}

var categoryTypes = map[MutationType]string{
	SBS:   "SBS_96",
	DBS:   "DBS_78",
	INDEL: "INDEL_83",
}

// CategoryType returns the category scheme name used in file columns
// (e.g. "SBS_96").
func (mt MutationType) CategoryType() string {
	return categoryTypes[mt]
}

// countsPathColumn returns the metadata column holding the counts file path.
func (mt MutationType) countsPathColumn() string {
	return fmt.Sprintf(colPathCountsFmt, mt.CategoryType())
}

// ParseMutationType parses a mutation type name, case-insensitively.
func ParseMutationType(s string) (MutationType, error) {
	for _, mt := range MutationTypes {
		if strings.EqualFold(s, string(mt)) {
			return mt, nil
		}
	}
	return "", fmt.Errorf("unknown mutation type %q", s)
}

// Kind names a per-project data kind.
type Kind string

const (
	KindSamples  Kind = "samples"
	KindClinical Kind = "clinical"
	KindCounts   Kind = "counts"
	KindGeneMut  Kind = "gene_mut"
	KindGeneExp  Kind = "gene_exp"
	KindGeneCNA  Kind = "gene_cna"
)
