package sources

// Registry holds every configured Source, queryable by maximum tier for the
// collection-mode source selection in spec §4.2.
type Registry struct {
	sources []Source
}

func NewRegistry(cfgs []Config) *Registry {
	r := &Registry{}
	for _, cfg := range cfgs {
		r.sources = append(r.sources, Build(cfg))
	}
	return r
}

// All returns every registered source.
func (r *Registry) All() []Source {
	return r.sources
}

// WithMaxTier returns the subset of sources whose tier is <= maxTier. A
// maxTier of 0 means no tier restriction (all sources), matching modes
// "aggressive" and "normal" in the collection mode contract.
func (r *Registry) WithMaxTier(maxTier int) []Source {
	if maxTier <= 0 {
		return r.All()
	}
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		if s.Tier() <= maxTier {
			out = append(out, s)
		}
	}
	return out
}
