package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/yanirs/rls-data/internal/aggregate"
	"github.com/yanirs/rls-data/internal/crawl"
	"github.com/yanirs/rls-data/internal/errs"
)

func siteTableFixture() aggregate.SiteTable {
	return aggregate.SiteTable{
		Keys: []string{"site_code", "country", "realm", "location", "ecoregion", "site_name", "longitude", "latitude", "num_surveys"},
		Rows: [][]any{
			{"SYD1", "Australia", "Realm", "Loc", "Eco", "Sydney", 151.3, -33.9, float64(2)},
		},
	}
}

func TestSiteCoordinates(t *testing.T) {
	coords, err := siteCoordinates(siteTableFixture())
	require.NoError(t, err)
	assert.Equal(t, map[string]geom.Coord{"SYD1": {151.3, -33.9}}, coords)
}

func TestSiteCoordinates_MissingColumn(t *testing.T) {
	table := siteTableFixture()
	table.Keys = []string{"site_code", "num_surveys"}
	table.Rows = [][]any{{"SYD1", float64(2)}}

	_, err := siteCoordinates(table)
	require.Error(t, err)
	assert.True(t, errs.IsSchema(err))
}

func TestSiteCoordinates_RaggedRow(t *testing.T) {
	table := siteTableFixture()
	table.Rows = [][]any{{"SYD1"}}

	_, err := siteCoordinates(table)
	require.Error(t, err)
	assert.True(t, errs.IsSchema(err))
}

func TestSpeciesSlugSites(t *testing.T) {
	records := crawl.Index{
		"foo bar": {ID: "foo-bar", Name: "Foo bar"},
	}
	counts := map[string]map[string]int{
		"Foo bar":   {"SYD1": 2, "HOB1": 1},
		"Unmatched": {"SYD1": 1},
	}

	out := speciesSlugSites(records, counts)
	require.Len(t, out, 1)
	assert.ElementsMatch(t, []string{"SYD1", "HOB1"}, out["foo-bar"])
}
