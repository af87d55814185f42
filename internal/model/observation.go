// Package model holds the shared data shapes of the survey pipeline:
// observation rows, category codes, and the API output summaries.
package model

// Observation is one (survey, species) sighting row from the raw survey
// CSVs. Rows are immutable after loading; descriptive site fields are
// redundant across rows sharing a site.
type Observation struct {
	SurveyID    string
	Country     string
	Ecoregion   string
	Realm       string
	Location    string
	SiteCode    string
	SiteName    string
	Program     string
	Class       string
	Family      string
	SpeciesName string
	Latitude    float64
	Longitude   float64
	Total       int

	// Category is assigned by the classifier during loading.
	Category CategoryCode
}
