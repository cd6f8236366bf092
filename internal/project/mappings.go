package project

import (
	"fmt"
	"io"

	"github.com/inodb/sigdata/internal/oncotree"
	"github.com/inodb/sigdata/internal/table"
)

// SignatureMapping associates a project with a signature group through an
// OncoTree code.
type SignatureMapping struct {
	SignatureGroup string `json:"sig_group"`
	OncotreeCode   string `json:"oncotree_code"`
	OncotreeName   string `json:"oncotree_name"`
}

type mappingRow struct {
	project, group, code string
}

// SignatureMappings is the global project to signature-group table.
type SignatureMappings struct {
	rows []mappingRow
}

// ParseSignatureMappings reads the tab-separated mapping table with columns
// Project, Signature Group and Oncotree Code.
func ParseSignatureMappings(r io.Reader) (*SignatureMappings, error) {
	f, err := table.Read(r)
	if err != nil {
		return nil, fmt.Errorf("read signature mappings: %w", err)
	}

	cols := make([]int, 3)
	for i, name := range []string{ColProject, ColSignatureGroup, ColOncotreeCode} {
		cols[i] = f.ColumnIndex(name)
		if cols[i] < 0 {
			return nil, &table.ParseError{Line: 1, Message: fmt.Sprintf("required column '%s' not found in header", name)}
		}
	}

	sm := &SignatureMappings{rows: make([]mappingRow, 0, f.Len())}
	for _, row := range f.Rows {
		sm.rows = append(sm.rows, mappingRow{
			project: row[cols[0]],
			group:   row[cols[1]],
			code:    row[cols[2]],
		})
	}
	return sm, nil
}

// Resolve returns the mappings for a project in table order, each annotated
// with the OncoTree name of its code. The mapping table is a computed
// artifact, so an unknown code is an integrity failure.
func (sm *SignatureMappings) Resolve(projectID string, tree *oncotree.Tree) ([]SignatureMapping, error) {
	if sm == nil {
		return nil, nil
	}

	var out []SignatureMapping
	for _, row := range sm.rows {
		if row.project != projectID {
			continue
		}
		node, ok := tree.FindNode(row.code)
		if !ok {
			return nil, &oncotree.StructuralError{
				Code:    row.code,
				Message: fmt.Sprintf("signature mapping for project %s references unknown code", projectID),
			}
		}
		out = append(out, SignatureMapping{
			SignatureGroup: row.group,
			OncotreeCode:   row.code,
			OncotreeName:   node.Name,
		})
	}
	return out, nil
}
