package aggregate

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanirs/rls-data/internal/model"
	"github.com/yanirs/rls-data/internal/survey"
)

// buildTable assembles a normalized table the way the loader would:
// sorted rows and sequential ids over sorted unique names.
func buildTable(t *testing.T, rows []model.Observation) *survey.Table {
	t.Helper()
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SurveyID != rows[j].SurveyID {
			return rows[i].SurveyID < rows[j].SurveyID
		}
		return rows[i].SpeciesName < rows[j].SpeciesName
	})
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.SpeciesName] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	ids := make(map[string]int, len(names))
	for i, name := range names {
		ids[name] = i
	}
	return &survey.Table{Rows: rows, Species: names, SpeciesIDs: ids}
}

func obs(surveyID, site, species string, cat model.CategoryCode, total int) model.Observation {
	return model.Observation{
		SurveyID:    surveyID,
		SiteCode:    site,
		SiteName:    "Site " + site,
		Realm:       "Temperate Australasia",
		Ecoregion:   "Bassian",
		Country:     "Australia",
		Program:     "RLS",
		SpeciesName: species,
		Latitude:    -42.68,
		Longitude:   147.95,
		Total:       total,
		Category:    cat,
	}
}

func TestSites_EndToEndScenario(t *testing.T) {
	table := buildTable(t, []model.Observation{
		obs("1", "A", "Foo bar", model.CategoryM1, 2),
		obs("1", "A", "Baz qux", model.CategoryBoth, 1),
		obs("2", "A", "Foo bar", model.CategoryM1, 3),
	})

	summaries, err := Sites(table)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	site := summaries["A"]
	require.NotNil(t, site)
	assert.Equal(t, 2, site.NumSurveys)

	bazID := table.SpeciesIDs["Baz qux"]
	fooID := table.SpeciesIDs["Foo bar"]
	counts := make(map[int]int)
	for _, c := range site.SpeciesCounts {
		counts[c.SpeciesID] = c.Surveys
	}
	assert.Equal(t, 2, counts[fooID], "Foo bar observed in two surveys")
	assert.Equal(t, 1, counts[bazID], "Baz qux observed in one survey")

	cats := SpeciesCategories(table)
	assert.Equal(t, model.CategoryM1, cats[fooID])
	assert.Equal(t, model.CategoryBoth, cats[bazID])
}

func TestSites_DuplicateSightingCountsOnce(t *testing.T) {
	// Same species twice within one survey: one survey counted.
	table := buildTable(t, []model.Observation{
		obs("1", "A", "Foo bar", model.CategoryM1, 2),
		obs("1", "A", "Foo bar", model.CategoryM1, 5),
	})

	summaries, err := Sites(table)
	require.NoError(t, err)
	site := summaries["A"]
	assert.Equal(t, 1, site.NumSurveys)
	require.Len(t, site.SpeciesCounts, 1)
	assert.Equal(t, 1, site.SpeciesCounts[0].Surveys)
}

func TestSites_NumSurveysInvariant(t *testing.T) {
	table := buildTable(t, []model.Observation{
		obs("1", "A", "Foo bar", model.CategoryM1, 1),
		obs("2", "A", "Baz qux", model.CategoryM2, 1),
		obs("3", "A", "Foo bar", model.CategoryM1, 1),
		obs("3", "B", "Foo bar", model.CategoryM1, 1),
		obs("4", "B", "Baz qux", model.CategoryM2, 1),
	})

	summaries, err := Sites(table)
	require.NoError(t, err)
	for code, site := range summaries {
		for _, c := range site.SpeciesCounts {
			assert.GreaterOrEqual(t, site.NumSurveys, c.Surveys,
				"site %s species %d", code, c.SpeciesID)
		}
	}
}

func TestSites_InsertionOrderOfSpeciesCounts(t *testing.T) {
	// Counts appear in first-appearance order over the sorted table, not
	// re-sorted by count or id afterwards.
	table := buildTable(t, []model.Observation{
		obs("1", "A", "Zebrasoma scopas", model.CategoryM1, 1),
		obs("2", "A", "Amphiprion akindynos", model.CategoryM1, 1),
	})

	summaries, err := Sites(table)
	require.NoError(t, err)
	site := summaries["A"]
	require.Len(t, site.SpeciesCounts, 2)
	// Survey 1's species comes first even though its id sorts last.
	assert.Equal(t, table.SpeciesIDs["Zebrasoma scopas"], site.SpeciesCounts[0].SpeciesID)
	assert.Equal(t, table.SpeciesIDs["Amphiprion akindynos"], site.SpeciesCounts[1].SpeciesID)
}

func TestSpeciesCategories_MixedRowsEscalate(t *testing.T) {
	table := buildTable(t, []model.Observation{
		obs("1", "A", "Foo bar", model.CategoryM1, 1),
		obs("2", "B", "Foo bar", model.CategoryM2, 1),
	})
	cats := SpeciesCategories(table)
	assert.Equal(t, model.CategoryBoth, cats[table.SpeciesIDs["Foo bar"]])
}

func TestSpeciesSiteCounts(t *testing.T) {
	table := buildTable(t, []model.Observation{
		obs("1", "A", "Foo bar", model.CategoryM1, 1),
		obs("1", "A", "Foo bar", model.CategoryM1, 2), // same survey: deduped
		obs("2", "A", "Foo bar", model.CategoryM1, 1),
		obs("2", "B", "Foo bar", model.CategoryM1, 1),
		obs("2", "B", "Baz qux", model.CategoryM2, 1),
	})

	counts := SpeciesSiteCounts(table)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, counts["Foo bar"])
	assert.Equal(t, map[string]int{"B": 1}, counts["Baz qux"])
}

func TestSitesTable(t *testing.T) {
	table := buildTable(t, []model.Observation{
		obs("1", "B", "Foo bar", model.CategoryM1, 1),
		obs("2", "A", "Baz qux", model.CategoryM2, 1),
	})
	summaries, err := Sites(table)
	require.NoError(t, err)

	st := SitesTable(summaries)
	assert.Equal(t, "site_code", st.Keys[0])
	require.Len(t, st.Rows, 2)
	assert.Equal(t, "A", st.Rows[0][0], "rows sorted by site code")
	assert.Equal(t, "B", st.Rows[1][0])
	assert.Len(t, st.Rows[0], len(st.Keys))
}
