package survey

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanirs/rls-data/internal/errs"
	"github.com/yanirs/rls-data/internal/model"
	"github.com/yanirs/rls-data/internal/taxonomy"
)

const testHeader = "survey_id,country,ecoregion,realm,location,site_code,site_name,program,class,family,species_name,latitude,longitude,total"

func writeCSV(t *testing.T, dir, name string, rows ...string) {
	t.Helper()
	content := testHeader + "\n"
	for _, row := range rows {
		content += row + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func testRules(t *testing.T) *taxonomy.Ruleset {
	t.Helper()
	rules, err := taxonomy.Default()
	require.NoError(t, err)
	return rules
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "m1.csv",
		"912,Australia,Bassian,Temperate Australasia,Tasmania,TAS1,North Bay,RLS,Actinopterygii,Labridae,Notolabrus tetricus,-42.68,147.95,12",
		"911,Australia,Bassian,Temperate Australasia,Tasmania,TAS1,North Bay,RLS,Actinopterygii,Labridae,Notolabrus tetricus,-42.68,147.95,4.0",
		"911,Australia,Bassian,Temperate Australasia,Tasmania,TAS1,North Bay,RLS,Actinopterygii,Labridae,,-42.68,147.95,7",
	)
	writeCSV(t, dir, "m2_cryptic_fish.csv",
		"911,Australia,Bassian,Temperate Australasia,Tasmania,TAS1,North Bay,RLS,,Gobiidae,Nesogobius pulchellus,-42.68,147.95,2",
	)

	table, err := Load(context.Background(), dir, testRules(t), LoadOptions{ExpectedFiles: 2, MinRows: 1})
	require.NoError(t, err)

	// The unnamed-species row is dropped; the rest sort by (survey_id, species_name).
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "911", table.Rows[0].SurveyID)
	assert.Equal(t, "Nesogobius pulchellus", table.Rows[0].SpeciesName)
	assert.Equal(t, "911", table.Rows[1].SurveyID)
	assert.Equal(t, "Notolabrus tetricus", table.Rows[1].SpeciesName)
	assert.Equal(t, "912", table.Rows[2].SurveyID)

	// Sequential ids over sorted unique names.
	assert.Equal(t, []string{"Nesogobius pulchellus", "Notolabrus tetricus"}, table.Species)
	assert.Equal(t, map[string]int{"Nesogobius pulchellus": 0, "Notolabrus tetricus": 1}, table.SpeciesIDs)

	// Categories assigned per row.
	assert.Equal(t, model.CategoryBoth, table.Rows[0].Category)
	assert.Equal(t, model.CategoryM1, table.Rows[1].Category)

	// Numeric columns parse, including decimal-point totals.
	assert.Equal(t, 4, table.Rows[1].Total)
	assert.InDelta(t, -42.68, table.Rows[1].Latitude, 1e-9)
	assert.InDelta(t, 147.95, table.Rows[1].Longitude, 1e-9)
}

func TestLoad_FileCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "m1.csv")

	_, err := Load(context.Background(), dir, testRules(t), LoadOptions{ExpectedFiles: 4, MinRows: 0})
	require.Error(t, err)
	assert.True(t, errs.IsSchema(err))
}

func TestLoad_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m1.csv"),
		[]byte("survey_id,species_name\n911,Foo bar\n"), 0o644))

	_, err := Load(context.Background(), dir, testRules(t), LoadOptions{ExpectedFiles: 1, MinRows: 0})
	require.Error(t, err)
	assert.True(t, errs.IsSchema(err))
}

func TestLoad_BelowMinRows(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "m1.csv",
		"911,Australia,Bassian,Temperate Australasia,Tasmania,TAS1,North Bay,RLS,Actinopterygii,Labridae,Notolabrus tetricus,-42.68,147.95,12",
	)

	_, err := Load(context.Background(), dir, testRules(t), LoadOptions{ExpectedFiles: 1, MinRows: 100})
	require.Error(t, err)
	assert.True(t, errs.IsVolume(err))
}

func TestLoad_StableIDsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	var rows []string
	for i := 0; i < 20; i++ {
		rows = append(rows, fmt.Sprintf(
			"9%02d,Australia,Bassian,Temperate Australasia,Tasmania,TAS1,North Bay,RLS,Actinopterygii,Labridae,Species %02d,-42.68,147.95,1", i, 19-i))
	}
	writeCSV(t, dir, "m1.csv", rows...)

	first, err := Load(context.Background(), dir, testRules(t), LoadOptions{ExpectedFiles: 1, MinRows: 1})
	require.NoError(t, err)
	second, err := Load(context.Background(), dir, testRules(t), LoadOptions{ExpectedFiles: 1, MinRows: 1, Concurrency: 4})
	require.NoError(t, err)
	assert.Equal(t, first.SpeciesIDs, second.SpeciesIDs)
	assert.Equal(t, first.Species, second.Species)
}
