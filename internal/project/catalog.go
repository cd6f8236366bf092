package project

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/inodb/sigdata/internal/cache"
	"github.com/inodb/sigdata/internal/oncotree"
	"github.com/inodb/sigdata/internal/store"
)

// Config locates the static inputs of a catalog. Keys are resolved against
// the store; the signature mapping and aggregate keys are optional.
type Config struct {
	Store          store.Config
	MetaKey        string
	OncotreeKey    string
	SigsMappingKey string
	SamplesAggKey  string
}

// Options tunes catalog behavior.
type Options struct {
	Logger       *zap.Logger
	CacheEnabled bool
	CacheSize    int
	Registerer   prometheus.Registerer // cache metrics, optional
}

// Catalog is the loaded project data context: the taxonomy tree, the
// metadata registry and the global lookup tables. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	store      store.Store
	tree       *oncotree.Tree
	registry   *Registry
	mappings   *SignatureMappings
	aggregates Aggregates
	cache      *cache.Cache
	logger     *zap.Logger
}

// Open loads every static input named in cfg, in dependency order: store,
// taxonomy tree, metadata registry, signature mappings, sample aggregates.
func Open(ctx context.Context, cfg Config, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	tree, err := loadTree(ctx, st, cfg.OncotreeKey)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded oncotree",
		zap.String("key", cfg.OncotreeKey),
		zap.Int("nodes", tree.Len()),
		zap.Int("tissues", len(tree.TissueNodes())))

	rc, err := st.Open(ctx, cfg.MetaKey)
	if err != nil {
		return nil, fmt.Errorf("open metadata %s: %w", cfg.MetaKey, err)
	}
	registry, err := ParseRegistry(rc, tree, logger)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("metadata %s: %w", cfg.MetaKey, err)
	}
	logger.Info("loaded project metadata", zap.String("key", cfg.MetaKey), zap.Int("projects", registry.Len()))

	var mappings *SignatureMappings
	if cfg.SigsMappingKey != "" {
		rc, err := st.Open(ctx, cfg.SigsMappingKey)
		if err != nil {
			return nil, fmt.Errorf("open signature mappings %s: %w", cfg.SigsMappingKey, err)
		}
		mappings, err = ParseSignatureMappings(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("signature mappings %s: %w", cfg.SigsMappingKey, err)
		}
	}

	var aggregates Aggregates
	if cfg.SamplesAggKey != "" {
		rc, err := st.Open(ctx, cfg.SamplesAggKey)
		if err != nil {
			return nil, fmt.Errorf("open sample aggregates %s: %w", cfg.SamplesAggKey, err)
		}
		aggregates, err = ParseAggregates(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("sample aggregates %s: %w", cfg.SamplesAggKey, err)
		}
	}

	c := NewCatalog(st, tree, registry, mappings, aggregates, logger)
	if opts.CacheEnabled {
		tc, err := cache.New(st, opts.CacheSize, opts.Registerer)
		if err != nil {
			return nil, err
		}
		tc.SetLogger(logger)
		c.cache = tc
	}
	return c, nil
}

func loadTree(ctx context.Context, st store.Store, key string) (*oncotree.Tree, error) {
	rc, err := st.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open oncotree %s: %w", key, err)
	}
	defer rc.Close()

	tree, err := oncotree.Load(rc)
	if err != nil {
		return nil, fmt.Errorf("oncotree %s: %w", key, err)
	}
	return tree, nil
}

// NewCatalog assembles a catalog from already loaded parts. mappings and
// aggregates may be nil. The returned catalog does not cache tables.
func NewCatalog(st store.Store, tree *oncotree.Tree, registry *Registry, mappings *SignatureMappings, aggregates Aggregates, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		store:      st,
		tree:       tree,
		registry:   registry,
		mappings:   mappings,
		aggregates: aggregates,
		logger:     logger,
	}
}

// Tree returns the taxonomy tree.
func (c *Catalog) Tree() *oncotree.Tree { return c.tree }

// Registry returns the metadata registry.
func (c *Catalog) Registry() *Registry { return c.registry }

// Dataset returns the dataset of one project.
func (c *Catalog) Dataset(id string) (*Dataset, error) {
	m, err := c.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return newDataset(m, c), nil
}

// Selected returns datasets for ids in the caller's order. Any unknown id
// fails the whole call.
func (c *Catalog) Selected(ids []string) ([]*Dataset, error) {
	metas, err := c.registry.Selected(ids)
	if err != nil {
		return nil, err
	}
	return c.datasets(metas), nil
}

// All returns every project's dataset in metadata table order.
func (c *Catalog) All() []*Dataset {
	return c.datasets(c.registry.All())
}

func (c *Catalog) datasets(metas []*Metadata) []*Dataset {
	out := make([]*Dataset, len(metas))
	for i, m := range metas {
		out[i] = newDataset(m, c)
	}
	return out
}

// TissueType is one tissue-level taxonomy node.
type TissueType struct {
	Name string `json:"oncotree_name"`
	Code string `json:"oncotree_code"`
}

// TissueTypes lists the tissue nodes of the taxonomy in tree order.
func (c *Catalog) TissueTypes() []TissueType {
	nodes := c.tree.TissueNodes()
	out := make([]TissueType, len(nodes))
	for i, n := range nodes {
		out[i] = TissueType{Name: n.Name, Code: n.Code}
	}
	return out
}

// Summaries returns the listing record of every project in table order.
func (c *Catalog) Summaries(ctx context.Context) ([]Summary, error) {
	all := c.All()
	out := make([]Summary, 0, len(all))
	for _, d := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := d.Summary()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
