package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yanirs/rls-data/internal/model"
)

func TestIsPlaceholderName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{name: "Notolabrus tetricus", expected: false},
		{name: "Unidentified fish", expected: true},
		{name: "Unidentified", expected: true},
		{name: "Trachinops spp.", expected: true},
		{name: "Some genus spp. complex", expected: false}, // three words
		{name: "Acanthurus sp.", expected: false},          // only spp. is a placeholder
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isPlaceholderName(tt.name))
		})
	}
}

func TestProgramSummary(t *testing.T) {
	rows := []model.Observation{
		obs("1", "A", "Foo bar", model.CategoryM1, 2),
		obs("1", "A", "Unidentified fish", model.CategoryM2, 10),
		obs("2", "B", "Foo bar", model.CategoryM1, 3),
		obs("2", "B", "Trachinops spp.", model.CategoryM2, 7),
	}
	// One row from another program must not count at all.
	other := obs("3", "C", "Baz qux", model.CategoryM1, 100)
	other.Program = "ATRC"
	other.Country = "New Zealand"
	rows = append(rows, other)

	table := buildTable(t, rows)
	sum := ProgramSummary(table, "RLS")

	assert.Equal(t, 22, sum.AnimalsObserved)
	assert.Equal(t, 1, sum.ReefDwellingSpecies, "placeholders excluded")
	assert.Equal(t, 2, sum.SurveysCompleted)
	assert.Equal(t, 1, sum.CountriesSurveyed)
}
