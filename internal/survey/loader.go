// Package survey loads the raw observation CSVs into the normalized
// in-memory table the aggregator runs over.
package survey

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanirs/rls-data/internal/errs"
	"github.com/yanirs/rls-data/internal/model"
	"github.com/yanirs/rls-data/internal/taxonomy"
)

// requiredColumns is the projection every survey CSV must provide.
var requiredColumns = []string{
	"survey_id", "country", "ecoregion", "realm", "location",
	"site_code", "site_name", "program", "class", "family",
	"species_name", "latitude", "longitude", "total",
}

// Table is the normalized observation table. Rows are sorted by
// (survey_id, species_name) and every row carries its category code.
// Species ids are sequential integers assigned over the sorted set of
// unique names, so they are stable across runs given the same input.
type Table struct {
	Rows       []model.Observation
	Species    []string       // species id -> name
	SpeciesIDs map[string]int // name -> species id
}

// LoadOptions configures loading thresholds.
type LoadOptions struct {
	// ExpectedFiles is the exact number of CSVs the directory must hold.
	// A mismatch means a partial or stale download.
	ExpectedFiles int
	// MinRows is the minimum total row count after dropping unnamed
	// species. Fewer rows means a truncated download.
	MinRows int
	// Concurrency bounds the per-file read fan-out. Zero means len(files).
	Concurrency int
}

// Load reads every survey CSV in dir, classifies each row, and returns the
// normalized table.
func Load(ctx context.Context, dir string, rules *taxonomy.Ruleset, opts LoadOptions) (*Table, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, eris.Wrapf(err, "survey: glob %s", dir)
	}
	sort.Strings(paths)
	if len(paths) != opts.ExpectedFiles {
		return nil, eris.Wrapf(errs.ErrSchema,
			"survey: expected %d data files in %s, found %d", opts.ExpectedFiles, dir, len(paths))
	}

	perFile := make([][]model.Observation, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "survey: cancelled")
			}
			rows, err := readFile(path)
			if err != nil {
				return err
			}
			zap.L().Info("read survey file",
				zap.String("path", path),
				zap.Int("rows", len(rows)),
			)
			perFile[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var rows []model.Observation
	for _, fileRows := range perFile {
		rows = append(rows, fileRows...)
	}
	if len(rows) < opts.MinRows {
		return nil, eris.Wrapf(errs.ErrVolume,
			"survey: expected at least %d rows, found %d", opts.MinRows, len(rows))
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SurveyID != rows[j].SurveyID {
			return rows[i].SurveyID < rows[j].SurveyID
		}
		return rows[i].SpeciesName < rows[j].SpeciesName
	})

	table := &Table{Rows: rows}
	table.assignSpeciesIDs()
	for i := range table.Rows {
		r := &table.Rows[i]
		r.Category = rules.Classify(r.Class, r.Family, r.SpeciesName)
	}
	return table, nil
}

// assignSpeciesIDs maps each unique species name to a sequential integer
// in sorted-name order.
func (t *Table) assignSpeciesIDs() {
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		seen[r.SpeciesName] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	t.Species = names
	t.SpeciesIDs = make(map[string]int, len(names))
	for id, name := range names {
		t.SpeciesIDs[name] = id
	}
}

// readFile parses one survey CSV, projecting to the required columns and
// dropping rows with an empty species name.
func readFile(path string) ([]model.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "survey: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "survey: read header of %s", path)
	}
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Wrapf(errs.ErrSchema, "survey: %s missing required column %q", path, col)
		}
	}

	var rows []model.Observation
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "survey: %s line %d", path, line)
		}

		species := strings.TrimSpace(getCol(record, colIdx, "species_name"))
		if species == "" {
			continue
		}

		lat, err := parseFloat(getCol(record, colIdx, "latitude"))
		if err != nil {
			return nil, eris.Wrapf(err, "survey: %s line %d: latitude", path, line)
		}
		lon, err := parseFloat(getCol(record, colIdx, "longitude"))
		if err != nil {
			return nil, eris.Wrapf(err, "survey: %s line %d: longitude", path, line)
		}
		total, err := parseCount(getCol(record, colIdx, "total"))
		if err != nil {
			return nil, eris.Wrapf(err, "survey: %s line %d: total", path, line)
		}

		rows = append(rows, model.Observation{
			SurveyID:    strings.TrimSpace(getCol(record, colIdx, "survey_id")),
			Country:     getCol(record, colIdx, "country"),
			Ecoregion:   getCol(record, colIdx, "ecoregion"),
			Realm:       getCol(record, colIdx, "realm"),
			Location:    getCol(record, colIdx, "location"),
			SiteCode:    strings.TrimSpace(getCol(record, colIdx, "site_code")),
			SiteName:    getCol(record, colIdx, "site_name"),
			Program:     strings.TrimSpace(getCol(record, colIdx, "program")),
			Class:       strings.TrimSpace(getCol(record, colIdx, "class")),
			Family:      strings.TrimSpace(getCol(record, colIdx, "family")),
			SpeciesName: species,
			Latitude:    lat,
			Longitude:   lon,
			Total:       total,
		})
	}
	return rows, nil
}

// getCol safely retrieves a column value from a CSV row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseCount reads a non-negative integer that the upstream service may
// serialize with a decimal point.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
