package aggregate

import (
	"strings"

	"github.com/yanirs/rls-data/internal/survey"
)

// Summary holds the homepage counters, restricted to one program's rows.
type Summary struct {
	AnimalsObserved     int `json:"animalsobserved"`
	ReefDwellingSpecies int `json:"reefdwellingspecies"`
	SurveysCompleted    int `json:"surveycompleted"`
	CountriesSurveyed   int `json:"countriessurveyed"`
}

// isPlaceholderName reports whether a species name is a placeholder rather
// than an identified species: "Unidentified ..." entries and genus-level
// "Xxx spp." entries.
func isPlaceholderName(name string) bool {
	if strings.HasPrefix(name, "Unidentified") {
		return true
	}
	return len(strings.Fields(name)) == 2 && strings.HasSuffix(name, "spp.")
}

// ProgramSummary computes the overall counters over rows of one program.
func ProgramSummary(table *survey.Table, program string) Summary {
	var sum Summary
	speciesSet := make(map[string]struct{})
	surveySet := make(map[string]struct{})
	countrySet := make(map[string]struct{})

	for _, row := range table.Rows {
		if row.Program != program {
			continue
		}
		sum.AnimalsObserved += row.Total
		surveySet[row.SurveyID] = struct{}{}
		countrySet[row.Country] = struct{}{}
		if !isPlaceholderName(row.SpeciesName) {
			speciesSet[row.SpeciesName] = struct{}{}
		}
	}

	sum.ReefDwellingSpecies = len(speciesSet)
	sum.SurveysCompleted = len(surveySet)
	sum.CountriesSurveyed = len(countrySet)
	return sum
}
