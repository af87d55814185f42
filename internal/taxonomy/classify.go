package taxonomy

import "github.com/yanirs/rls-data/internal/model"

// Classify assigns a survey-method category to one observation row.
// Rules, in order:
//   - class in the M1 set: M1
//   - family cryptic and genus not excluded, or class in the invertebrate
//     override set: both
//   - otherwise: M2
//
// The genus exclusion is consulted only when the family is cryptic; a row
// from a non-cryptic family is never subject to it. Pure function of its
// arguments, no hidden state.
func (r *Ruleset) Classify(class, family, speciesName string) model.CategoryCode {
	if _, ok := r.m1Classes[class]; ok {
		return model.CategoryM1
	}
	if _, ok := r.m1InvertClasses[class]; ok {
		return model.CategoryBoth
	}
	if _, ok := r.crypticFamilies[family]; ok {
		if r.generaExclusion == nil || !r.generaExclusion.MatchString(speciesName) {
			return model.CategoryBoth
		}
	}
	return model.CategoryM2
}
