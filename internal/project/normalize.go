package project

import "github.com/inodb/sigdata/internal/table"

// Normalizer maps raw sample and patient identifiers of one project to the
// project-prefixed keys shared by every per-sample table.
type Normalizer struct {
	projectID string
	truncate  bool
}

// NewNormalizer returns the identifier normalizer for a project.
func NewNormalizer(projectID, source string) Normalizer {
	return Normalizer{
		projectID: projectID,
		truncate:  source == SourceTCGA,
	}
}

// Suffix applies the source-specific transform to a raw identifier.
func (n Normalizer) Suffix(raw string) string {
	if !n.truncate {
		return raw
	}
	i := 0
	for pos := range raw {
		if i == tcgaBarcodeLength {
			return raw[:pos]
		}
		i++
	}
	return raw
}

// Normalize returns "<projectID> <suffix>" for a raw identifier.
func (n Normalizer) Normalize(raw string) string {
	return n.projectID + " " + n.Suffix(raw)
}

// normalizeCell normalizes a table cell, leaving missing values untouched so
// that absent identifiers never turn into join keys.
func (n Normalizer) normalizeCell(v string) string {
	if table.IsMissing(v) {
		return v
	}
	return n.Normalize(v)
}
