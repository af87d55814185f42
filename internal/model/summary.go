package model

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
)

// SpeciesCount is one entry of a site's per-species survey counts.
type SpeciesCount struct {
	SpeciesID int
	Surveys   int
}

// OrderedCounts is a species-id to survey-count mapping that marshals as a
// JSON object preserving slice order. The order is the first-appearance
// order from the deduplicated groupby, not a secondary sort.
type OrderedCounts []SpeciesCount

// MarshalJSON renders the counts as an object with integer-string keys.
func (oc OrderedCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range oc {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(c.SpeciesID)))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Surveys))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object back preserving key order.
func (oc *OrderedCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "counts: read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return eris.Errorf("counts: expected '{', got %v", tok)
	}
	out := OrderedCounts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "counts: read key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return eris.Errorf("counts: non-string key %v", keyTok)
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			return eris.Wrapf(err, "counts: non-integer key %q", key)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return eris.Wrapf(err, "counts: value for key %q", key)
		}
		out = append(out, SpeciesCount{SpeciesID: id, Surveys: count})
	}
	*oc = out
	return nil
}

// SiteSummary is the aggregated view of one survey site. It marshals to the
// legacy API array form:
//
//	[realm, ecoregion, site_name, longitude, latitude, num_surveys, {species_id: count}]
type SiteSummary struct {
	SiteCode      string
	Country       string
	Realm         string
	Location      string
	Ecoregion     string
	SiteName      string
	Longitude     float64
	Latitude      float64
	NumSurveys    int
	SpeciesCounts OrderedCounts
}

// MarshalJSON renders the legacy API array. SiteCode is the enclosing map
// key and Country/Location are only part of the new-format sites.json, so
// none of the three appear here.
func (s *SiteSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{
		s.Realm, s.Ecoregion, s.SiteName, s.Longitude, s.Latitude, s.NumSurveys, s.SpeciesCounts,
	})
}

// UnmarshalJSON reads the legacy API array back into the summary fields.
func (s *SiteSummary) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return eris.Wrap(err, "site summary: decode array")
	}
	if len(raw) != 7 {
		return eris.Errorf("site summary: expected 7 elements, got %d", len(raw))
	}
	fields := []any{&s.Realm, &s.Ecoregion, &s.SiteName, &s.Longitude, &s.Latitude, &s.NumSurveys, &s.SpeciesCounts}
	for i, dst := range fields {
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return eris.Wrapf(err, "site summary: element %d", i)
		}
	}
	return nil
}

// SpeciesInfo is the merged per-species output row. It marshals to the
// legacy API array form:
//
//	[name, common_name, url_or_null, category_code, [image_urls]]
type SpeciesInfo struct {
	Name       string
	CommonName string
	URL        string // empty renders as null
	Category   CategoryCode
	ImageURLs  []string
}

func (s *SpeciesInfo) MarshalJSON() ([]byte, error) {
	var url any
	if s.URL != "" {
		url = s.URL
	}
	images := s.ImageURLs
	if images == nil {
		images = []string{}
	}
	return json.Marshal([]any{s.Name, s.CommonName, url, int(s.Category), images})
}
