package project

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/inodb/sigdata/internal/oncotree"
	"github.com/inodb/sigdata/internal/table"
)

// Metadata describes one project: one row of the metadata table.
// An empty path means the data kind is absent for the project.
type Metadata struct {
	ID           string
	Name         string
	OncotreeCode string         // as given in the metadata, "" if absent
	Oncotree     *oncotree.Node // nil if the code is absent or unresolved
	Source       string
	SeqType      string

	SamplesPath  string
	ClinicalPath string
	CountsPaths  map[MutationType]string
	GeneMutPath  string
	GeneExpPath  string
	GeneCNAPath  string
}

func (m *Metadata) HasSamples() bool  { return m.SamplesPath != "" }
func (m *Metadata) HasClinical() bool { return m.ClinicalPath != "" }
func (m *Metadata) HasGeneMut() bool  { return m.GeneMutPath != "" }
func (m *Metadata) HasGeneExp() bool  { return m.GeneExpPath != "" }
func (m *Metadata) HasGeneCNA() bool  { return m.GeneCNAPath != "" }

// HasCounts reports whether the project has a counts file for mt.
func (m *Metadata) HasCounts(mt MutationType) bool {
	return m.CountsPaths[mt] != ""
}

// Registry holds the parsed metadata of every project, in table order.
type Registry struct {
	projects []*Metadata
	byID     map[string]int
}

// ParseRegistry reads the tab-separated metadata table. Taxonomy codes are
// resolved against tree; an unresolvable code is logged and left unresolved.
func ParseRegistry(r io.Reader, tree *oncotree.Tree, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := table.Read(r)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	for _, col := range []string{ColName, ColSource} {
		if f.ColumnIndex(col) < 0 {
			return nil, &table.ParseError{Line: 1, Message: fmt.Sprintf("required column '%s' not found in header", col)}
		}
	}

	cell := func(row []string, col string) string {
		i := f.ColumnIndex(col)
		if i < 0 || table.IsMissing(row[i]) {
			return ""
		}
		return row[i]
	}

	reg := &Registry{byID: make(map[string]int, f.Len())}
	for i, row := range f.Rows {
		id := row[0]
		if table.IsMissing(id) {
			return nil, &table.ParseError{Line: i + 2, Message: "missing project id"}
		}
		if _, dup := reg.byID[id]; dup {
			return nil, &table.ParseError{Line: i + 2, Message: fmt.Sprintf("duplicate project id %q", id)}
		}

		m := &Metadata{
			ID:           id,
			Name:         cell(row, ColName),
			OncotreeCode: cell(row, ColOncotreeCode),
			Source:       cell(row, ColSource),
			SeqType:      cell(row, ColSeqType),
			SamplesPath:  cell(row, ColPathSamples),
			ClinicalPath: cell(row, ColPathClinical),
			GeneMutPath:  cell(row, ColPathGeneMut),
			GeneExpPath:  cell(row, ColPathGeneExp),
			GeneCNAPath:  cell(row, ColPathGeneCNA),
			CountsPaths:  make(map[MutationType]string, len(MutationTypes)),
		}
		for _, mt := range MutationTypes {
			if p := cell(row, mt.countsPathColumn()); p != "" {
				m.CountsPaths[mt] = p
			}
		}

		if m.OncotreeCode != "" && tree != nil {
			if node, ok := tree.FindNode(m.OncotreeCode); ok {
				m.Oncotree = node
			} else {
				logger.Warn("unresolved oncotree code",
					zap.String("project", id),
					zap.String("code", m.OncotreeCode))
			}
		}

		reg.byID[id] = len(reg.projects)
		reg.projects = append(reg.projects, m)
	}

	return reg, nil
}

// Len returns the number of projects.
func (r *Registry) Len() int {
	return len(r.projects)
}

// Get returns the metadata for a project id.
func (r *Registry) Get(id string) (*Metadata, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return r.projects[i], nil
}

// Selected returns the metadata for ids in the caller's order.
func (r *Registry) Selected(ids []string) ([]*Metadata, error) {
	out := make([]*Metadata, 0, len(ids))
	for _, id := range ids {
		m, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// All returns every project in metadata table order.
func (r *Registry) All() []*Metadata {
	out := make([]*Metadata, len(r.projects))
	copy(out, r.projects)
	return out
}
