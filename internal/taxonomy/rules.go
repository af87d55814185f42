// Package taxonomy classifies observation rows into survey-method
// categories from immutable rule tables: taxonomic class membership,
// cryptic family membership, and a genus-name exclusion list.
package taxonomy

import (
	_ "embed"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// ruleFile is the YAML shape of the rule tables.
type ruleFile struct {
	M1Classes          []string `yaml:"m1_classes"`
	M1InvertClasses    []string `yaml:"m1_invert_classes"`
	CrypticFamilies    []string `yaml:"cryptic_families"`
	M2GeneraExclusions []string `yaml:"m2_genera_exclusions"`
}

// Ruleset holds the compiled rule tables. It is immutable after
// construction and safe to share across goroutines.
type Ruleset struct {
	m1Classes       map[string]struct{}
	m1InvertClasses map[string]struct{}
	crypticFamilies map[string]struct{}
	generaExclusion *regexp.Regexp
}

// Default returns the ruleset compiled from the embedded tables.
func Default() (*Ruleset, error) {
	return parse(defaultRulesYAML)
}

// LoadFile returns the ruleset compiled from a YAML file at path.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "taxonomy: read rules %s", path)
	}
	rs, err := parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "taxonomy: rules %s", path)
	}
	return rs, nil
}

func parse(data []byte) (*Ruleset, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, eris.Wrap(err, "taxonomy: parse rules yaml")
	}
	if len(rf.M1Classes) == 0 || len(rf.CrypticFamilies) == 0 {
		return nil, eris.New("taxonomy: rules yaml missing m1_classes or cryptic_families")
	}

	rs := &Ruleset{
		m1Classes:       toSet(rf.M1Classes),
		m1InvertClasses: toSet(rf.M1InvertClasses),
		crypticFamilies: toSet(rf.CrypticFamilies),
	}
	if len(rf.M2GeneraExclusions) > 0 {
		// Case-sensitive genus prefix match on the full species name.
		pattern := "^(?:" + strings.Join(escapeAll(rf.M2GeneraExclusions), "|") + ")"
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, eris.Wrap(err, "taxonomy: compile genus exclusions")
		}
		rs.generaExclusion = re
	}
	return rs, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func escapeAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = regexp.QuoteMeta(item)
	}
	return out
}
