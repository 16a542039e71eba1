package forecast

import "sync"

// DefaultTemplates returns the built-in seasonality curves.
func DefaultTemplates() []SeasonalPattern {
	return []SeasonalPattern{
		{
			ID:          "electronics",
			Name:        "Electronics",
			Multipliers: []float64{0.8, 0.7, 0.9, 1.0, 1.1, 1.0, 0.9, 0.8, 1.2, 1.3, 1.8, 2.2},
		},
		{
			ID:          "clothing",
			Name:        "Clothing",
			Multipliers: []float64{0.6, 0.7, 1.2, 1.4, 1.3, 1.0, 0.8, 0.9, 1.3, 1.4, 1.6, 1.2},
		},
		{
			ID:          "sports",
			Name:        "Sports",
			Multipliers: []float64{0.7, 0.8, 1.2, 1.4, 1.6, 1.8, 1.5, 1.3, 1.1, 0.9, 0.7, 0.8},
		},
		{
			ID:          DefaultTemplateID,
			Name:        "Flat",
			Multipliers: []float64{1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0},
		},
	}
}

// TemplateRegistry holds seasonal patterns by id. Writes are serialised
// and validated before they touch the map, so a rejected write leaves the
// registry unchanged. Patterns are copied in and out.
type TemplateRegistry struct {
	mu        sync.RWMutex
	templates map[string]SeasonalPattern
	order     []string
	version   uint64
}

// NewTemplateRegistry builds a registry holding seed.
func NewTemplateRegistry(seed ...SeasonalPattern) (*TemplateRegistry, error) {
	r := &TemplateRegistry{templates: make(map[string]SeasonalPattern)}
	for _, p := range seed {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewDefaultRegistry builds a registry seeded with DefaultTemplates.
func NewDefaultRegistry() *TemplateRegistry {
	r, err := NewTemplateRegistry(DefaultTemplates()...)
	if err != nil {
		panic(err)
	}
	return r
}

// List returns every template in insertion order.
func (r *TemplateRegistry) List() []SeasonalPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SeasonalPattern, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id].clone())
	}
	return out
}

// Get returns the template with the given id.
func (r *TemplateRegistry) Get(id string) (SeasonalPattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.templates[id]
	if !ok {
		return SeasonalPattern{}, false
	}
	return p.clone(), true
}

// Add inserts p or overwrites the template with the same id.
func (r *TemplateRegistry) Add(p SeasonalPattern) error {
	if err := ValidatePattern(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.templates[p.ID] = p.clone()
	r.version++
	return nil
}

// Update replaces the curve of an existing template.
func (r *TemplateRegistry) Update(id string, multipliers []float64) (SeasonalPattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.templates[id]
	if !ok {
		return SeasonalPattern{}, &NotFoundError{Kind: "seasonal template", ID: id}
	}

	next := current.clone()
	next.Multipliers = append([]float64(nil), multipliers...)
	if err := ValidatePattern(next); err != nil {
		return SeasonalPattern{}, err
	}

	r.templates[id] = next
	r.version++
	return next.clone(), nil
}

// Version increases on every successful write.
func (r *TemplateRegistry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
