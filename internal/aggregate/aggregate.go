// Package aggregate computes the per-site and per-species summaries from
// the normalized observation table.
package aggregate

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/yanirs/rls-data/internal/errs"
	"github.com/yanirs/rls-data/internal/model"
	"github.com/yanirs/rls-data/internal/survey"
)

// surveySpecies identifies one (survey, species) sighting for dedup: a
// species seen multiple times in one survey counts once.
type surveySpecies struct {
	surveyID  string
	speciesID int
}

// Sites aggregates the table into per-site summaries keyed by site code.
// num_surveys counts distinct survey ids per site; the per-species counts
// are distinct surveys per (site, species) after (survey, species) dedup,
// in first-appearance order over the sorted table.
func Sites(table *survey.Table) (map[string]*model.SiteSummary, error) {
	summaries := make(map[string]*model.SiteSummary)
	siteSurveys := make(map[string]map[string]struct{})
	siteSpeciesIdx := make(map[string]map[int]int) // site -> species id -> index into SpeciesCounts
	seen := make(map[surveySpecies]map[string]struct{})

	for _, row := range table.Rows {
		speciesID, ok := table.SpeciesIDs[row.SpeciesName]
		if !ok {
			return nil, eris.Wrapf(errs.ErrLookup, "aggregate: species %q has no id", row.SpeciesName)
		}

		s := summaries[row.SiteCode]
		if s == nil {
			s = &model.SiteSummary{
				SiteCode:  row.SiteCode,
				Country:   row.Country,
				Realm:     row.Realm,
				Location:  row.Location,
				Ecoregion: row.Ecoregion,
				SiteName:  row.SiteName,
				Longitude: row.Longitude,
				Latitude:  row.Latitude,
			}
			summaries[row.SiteCode] = s
			siteSurveys[row.SiteCode] = make(map[string]struct{})
			siteSpeciesIdx[row.SiteCode] = make(map[int]int)
		}
		siteSurveys[row.SiteCode][row.SurveyID] = struct{}{}

		// Dedup: count each survey once per species per site.
		key := surveySpecies{surveyID: row.SurveyID, speciesID: speciesID}
		sites := seen[key]
		if sites == nil {
			sites = make(map[string]struct{})
			seen[key] = sites
		}
		if _, dup := sites[row.SiteCode]; dup {
			continue
		}
		sites[row.SiteCode] = struct{}{}

		idx, ok := siteSpeciesIdx[row.SiteCode][speciesID]
		if !ok {
			idx = len(s.SpeciesCounts)
			siteSpeciesIdx[row.SiteCode][speciesID] = idx
			s.SpeciesCounts = append(s.SpeciesCounts, model.SpeciesCount{SpeciesID: speciesID})
		}
		s.SpeciesCounts[idx].Surveys++
	}

	for code, s := range summaries {
		s.NumSurveys = len(siteSurveys[code])
		if len(s.SpeciesCounts) == 0 {
			// Unreachable given the loader's empty-name drop; a defect if hit.
			return nil, eris.Wrapf(errs.ErrLookup, "aggregate: site %s has no species rows", code)
		}
	}
	return summaries, nil
}

// SpeciesCategories resolves each species to a single category code by
// merging its per-row categories.
func SpeciesCategories(table *survey.Table) map[int]model.CategoryCode {
	out := make(map[int]model.CategoryCode, len(table.Species))
	for _, row := range table.Rows {
		id := table.SpeciesIDs[row.SpeciesName]
		if cur, ok := out[id]; ok {
			out[id] = cur.Merge(row.Category)
		} else {
			out[id] = row.Category
		}
	}
	return out
}

// SpeciesSiteCounts returns, per species name, the number of distinct
// surveys the species was observed in at each site. This is the
// surveys.json input for the map renderer.
func SpeciesSiteCounts(table *survey.Table) map[string]map[string]int {
	out := make(map[string]map[string]int)
	type key struct {
		surveyID string
		species  string
		site     string
	}
	seen := make(map[key]struct{})
	for _, row := range table.Rows {
		k := key{surveyID: row.SurveyID, species: row.SpeciesName, site: row.SiteCode}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		sites := out[row.SpeciesName]
		if sites == nil {
			sites = make(map[string]int)
			out[row.SpeciesName] = sites
		}
		sites[row.SiteCode]++
	}
	return out
}

// SiteTable is the new-format sites.json payload: a keys header plus one
// row per site, sorted by site code.
type SiteTable struct {
	Keys []string `json:"keys"`
	Rows [][]any  `json:"rows"`
}

// SitesTable flattens the summaries into the new-format table.
func SitesTable(summaries map[string]*model.SiteSummary) SiteTable {
	codes := make([]string, 0, len(summaries))
	for code := range summaries {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	st := SiteTable{
		Keys: []string{
			"site_code", "country", "realm", "location", "ecoregion",
			"site_name", "longitude", "latitude", "num_surveys",
		},
		Rows: make([][]any, 0, len(codes)),
	}
	for _, code := range codes {
		s := summaries[code]
		st.Rows = append(st.Rows, []any{
			s.SiteCode, s.Country, s.Realm, s.Location, s.Ecoregion,
			s.SiteName, s.Longitude, s.Latitude, s.NumSurveys,
		})
	}
	return st
}
