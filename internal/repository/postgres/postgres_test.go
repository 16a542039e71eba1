package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProductQuery(t *testing.T) {
	query, args := buildProductQuery(domain.ProductFilter{})
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)

	query, args = buildProductQuery(domain.ProductFilter{IDs: []string{"p1", "p2"}, Category: "toys"})
	assert.Contains(t, query, "WHERE id = ANY($1) AND category = $2")
	assert.Contains(t, query, "ORDER BY id")
	require.Len(t, args, 2)
	assert.Equal(t, "toys", args[1])
}

func TestSalesRowToRecord(t *testing.T) {
	sold := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	marker := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rec := salesRow{
		SoldAt:          sold,
		Quantity:        3,
		Revenue:         30,
		UnitPrice:       10,
		PriceChangeDate: sql.NullTime{Time: marker, Valid: true},
	}.toRecord()

	assert.Equal(t, sold, rec.Date)
	assert.Equal(t, 3.0, rec.Quantity)
	require.NotNil(t, rec.PriceChangeMarker)
	assert.Equal(t, marker, *rec.PriceChangeMarker)

	assert.Nil(t, salesRow{SoldAt: sold}.toRecord().PriceChangeMarker)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := migrations.ReadFile("migrations/" + entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS sales")
}
