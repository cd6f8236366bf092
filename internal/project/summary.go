package project

import "github.com/inodb/sigdata/internal/table"

// Summary is the listing record of one project.
type Summary struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	NumSamples         int                `json:"num_samples"`
	Source             string             `json:"source"`
	HasClinical        bool               `json:"has_clinical"`
	HasGeneMut         bool               `json:"has_gene_mut"`
	HasGeneExp         bool               `json:"has_gene_exp"`
	HasGeneCNA         bool               `json:"has_gene_cna"`
	SigsMapping        []SignatureMapping `json:"sigs_mapping"`
	OncotreeCode       string             `json:"oncotree_code"`
	OncotreeName       string             `json:"oncotree_name"`
	OncotreeTissueCode string             `json:"oncotree_tissue_code"`
}

// Summary builds the project's listing record. Absent taxonomy fields are
// reported as "nan".
func (d *Dataset) Summary() (Summary, error) {
	mappings, err := d.SignatureGroupMappings()
	if err != nil {
		return Summary{}, err
	}
	if mappings == nil {
		mappings = []SignatureMapping{}
	}

	return Summary{
		ID:                 d.ID(),
		Name:               d.Name(),
		NumSamples:         d.SampleCount(),
		Source:             d.Source(),
		HasClinical:        d.HasClinical(),
		HasGeneMut:         d.HasGeneMutation(),
		HasGeneExp:         d.HasGeneExpression(),
		HasGeneCNA:         d.HasGeneCopyNumber(),
		SigsMapping:        mappings,
		OncotreeCode:       orMissing(d.TaxonomyCode()),
		OncotreeName:       orMissing(d.TaxonomyName()),
		OncotreeTissueCode: orMissing(d.TissueCode()),
	}, nil
}

func orMissing(v string, ok bool) string {
	if !ok {
		return table.Missing
	}
	return v
}
