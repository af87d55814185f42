// Package crawl handles the species-metadata side of the pipeline: loading
// crawler output, matching it to survey species, and the site scraper that
// produces it.
package crawl

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/yanirs/rls-data/internal/errs"
	"github.com/yanirs/rls-data/internal/jsonio"
)

// ImageRef is a raw scraped image reference: a path under the crawler's
// image directory. The owning identifier is the record's ID.
type ImageRef struct {
	Path string `json:"path"`
}

// Record is one crawled species page. Exactly one of ImageURLs (already
// resolved) or Images (raw references) is populated.
type Record struct {
	ID         string     `json:"id_"`
	Name       string     `json:"name"`
	CommonName string     `json:"common_name"`
	URL        string     `json:"url"`
	ImageURLs  []string   `json:"image_urls,omitempty"`
	Images     []ImageRef `json:"images,omitempty"`
}

// Index maps normalized (lowercase, NFC) species names to crawl records.
type Index map[string]Record

// NormalizeName folds a species name for case-insensitive matching.
func NormalizeName(name string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
}

// Lookup returns the record for a species name, matching case-insensitively.
func (idx Index) Lookup(name string) (Record, bool) {
	rec, ok := idx[NormalizeName(name)]
	return rec, ok
}

// LoadRecords reads the crawl output JSON (a list of records) and indexes
// it by normalized species name. Fewer than minItems entries means the
// crawl was truncated.
func LoadRecords(path string, minItems int) (Index, error) {
	var records []Record
	if err := jsonio.LoadJSON(path, &records); err != nil {
		return nil, err
	}

	idx := make(Index, len(records))
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		idx[NormalizeName(rec.Name)] = rec
	}
	if len(idx) < minItems {
		return nil, eris.Wrapf(errs.ErrVolume,
			"crawl: expected at least %d items in %s, found %d", minItems, path, len(idx))
	}
	return idx, nil
}
