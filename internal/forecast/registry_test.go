package forecast

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_ListOrder(t *testing.T) {
	r := NewDefaultRegistry()

	var ids []string
	for _, p := range r.List() {
		ids = append(ids, p.ID)
		assert.Len(t, p.Multipliers, MonthsPerPattern)
	}
	assert.Equal(t, []string{"electronics", "clothing", "sports", DefaultTemplateID}, ids)
}

func TestTemplateRegistry_AddRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		pattern SeasonalPattern
		field   string
		reason  string
	}{
		{
			name:    "eleven multipliers",
			pattern: SeasonalPattern{ID: "short", Multipliers: ones(11)},
			field:   "multipliers",
			reason:  "must contain exactly 12 entries",
		},
		{
			name:    "multiplier above range",
			pattern: SeasonalPattern{ID: "hot", Multipliers: append([]float64{3.5}, ones(11)...)},
			field:   "multipliers[0]",
			reason:  "must be within [0.1, 3.0]",
		},
		{
			name:    "multiplier below range",
			pattern: SeasonalPattern{ID: "cold", Multipliers: append(ones(11), 0.05)},
			field:   "multipliers[11]",
			reason:  "must be within [0.1, 3.0]",
		},
		{
			name:    "missing id",
			pattern: SeasonalPattern{Multipliers: ones(12)},
			field:   "id",
			reason:  "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDefaultRegistry()
			before := r.Version()

			err := r.Add(tt.pattern)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.reason, verr.Reason)

			assert.Len(t, r.List(), 4)
			assert.Equal(t, before, r.Version())
		})
	}
}

func TestTemplateRegistry_AddBoundaryValues(t *testing.T) {
	r := NewDefaultRegistry()

	err := r.Add(SeasonalPattern{ID: "edges", Multipliers: append([]float64{0.1, 3.0}, ones(10)...)})

	require.NoError(t, err)
	p, ok := r.Get("edges")
	require.True(t, ok)
	assert.Equal(t, 0.1, p.Multipliers[0])
	assert.Equal(t, 3.0, p.Multipliers[1])
}

func TestTemplateRegistry_AddOverwritesInPlace(t *testing.T) {
	r := NewDefaultRegistry()
	curve := repeat(1.5, 12)

	require.NoError(t, r.Add(SeasonalPattern{ID: "clothing", Name: "Apparel", Multipliers: curve}))

	list := r.List()
	require.Len(t, list, 4)
	assert.Equal(t, "clothing", list[1].ID)
	assert.Equal(t, "Apparel", list[1].Name)
	assert.Equal(t, curve, list[1].Multipliers)
}

func TestTemplateRegistry_Update(t *testing.T) {
	r := NewDefaultRegistry()
	before := r.Version()

	updated, err := r.Update("sports", repeat(2, 12))

	require.NoError(t, err)
	assert.Equal(t, "Sports", updated.Name)
	assert.Equal(t, repeat(2, 12), updated.Multipliers)
	assert.Greater(t, r.Version(), before)

	got, ok := r.Get("sports")
	require.True(t, ok)
	assert.Equal(t, repeat(2, 12), got.Multipliers)
}

func TestTemplateRegistry_UpdateMissing(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Update("nope", ones(12))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestTemplateRegistry_UpdateInvalidKeepsPrevious(t *testing.T) {
	r := NewDefaultRegistry()
	original, _ := r.Get("electronics")

	_, err := r.Update("electronics", append([]float64{3.5}, ones(11)...))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	got, _ := r.Get("electronics")
	assert.Equal(t, original, got)
}

func TestTemplateRegistry_ReturnsCopies(t *testing.T) {
	r := NewDefaultRegistry()

	list := r.List()
	list[0].Multipliers[0] = 99
	got, _ := r.Get(list[0].ID)
	got.Multipliers[1] = 99

	fresh, _ := r.Get(list[0].ID)
	assert.Equal(t, 0.8, fresh.Multipliers[0])
	assert.Equal(t, 0.7, fresh.Multipliers[1])
}

func TestTemplateRegistry_ConcurrentWrites(t *testing.T) {
	r := NewDefaultRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.Add(SeasonalPattern{ID: fmt.Sprintf("custom-%d", i), Multipliers: ones(12)}))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := r.Update(DefaultTemplateID, repeat(1+float64(i%5)/10, 12))
			assert.NoError(t, err)
			_ = r.List()
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.List(), 24)
	assert.Equal(t, uint64(4+40), r.Version())

	flat, ok := r.Get(DefaultTemplateID)
	require.True(t, ok)
	require.NoError(t, ValidatePattern(flat))
	for _, m := range flat.Multipliers {
		assert.Equal(t, flat.Multipliers[0], m)
	}
}
