// Package region picks the tightest map viewport for a set of site
// coordinates out of a fixed, priority-ordered catalog of named extents.
package region

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Region is a named geographic extent. CentralLongitude is the reference
// meridian: 0 means (MinLon, MaxLon) is a plain interval, 180 means the
// extent wraps the antimeridian and covers [-180, MinLon] and [MaxLon, 180].
type Region struct {
	Name             string
	CentralLongitude float64
	MinLon           float64
	MaxLon           float64
	MinLat           float64
	MaxLat           float64
}

// World is the unconditional fallback extent, always last in the catalog.
var World = Region{Name: "World", CentralLongitude: 180, MinLon: -180, MaxLon: 180, MinLat: -90, MaxLat: 90}

// catalog order matters: narrower regional extents come first so the
// tightest fitting viewport wins. Extents keep a 4:3 aspect for a
// consistent rendered look.
var catalog = []Region{
	{Name: "Australia", CentralLongitude: 0, MinLon: 90, MaxLon: 180, MinLat: -50, MaxLat: 17.5},
	{Name: "Europe", CentralLongitude: 0, MinLon: -30, MaxLon: 42, MinLat: 10, MaxLat: 64},
	{Name: "North America", CentralLongitude: 0, MinLon: -135, MaxLon: -10, MinLat: -3.75, MaxLat: 90},
	{Name: "Atlantic", CentralLongitude: 0, MinLon: -120, MaxLon: 40, MinLat: -60, MaxLat: 60},
	{Name: "Indian", CentralLongitude: 0, MinLon: 10, MaxLon: 130, MinLat: -50, MaxLat: 40},
	{Name: "Pacific", CentralLongitude: 180, MinLon: -70, MaxLon: 118, MinLat: -70, MaxLat: 71},
	World,
}

// Catalog returns the ordered region catalog. The returned slice is a copy.
func Catalog() []Region {
	out := make([]Region, len(catalog))
	copy(out, catalog)
	return out
}

// IsWorld reports whether the region is the whole-world fallback.
func (r Region) IsWorld() bool {
	return r.MinLon == -180 && r.MaxLon == 180
}

// Contains reports whether every coordinate lies within the region extent.
// Coordinates are (longitude, latitude) pairs.
func (r Region) Contains(coords []geom.Coord) bool {
	if r.IsWorld() {
		return true
	}
	for _, c := range coords {
		lon, lat := c.X(), c.Y()
		if lat < r.MinLat || lat > r.MaxLat {
			return false
		}
		if r.CentralLongitude == 0 {
			if lon < r.MinLon || lon > r.MaxLon {
				return false
			}
			continue
		}
		// Meridian-180 extent: the interval wraps the antimeridian.
		if !(lon >= -180 && lon <= r.MinLon) && !(lon >= r.MaxLon && lon <= 180) {
			return false
		}
	}
	return true
}

// Resolve returns the first catalog region containing all coordinates.
// The world fallback guarantees a result for any non-empty input.
func Resolve(coords []geom.Coord) (Region, error) {
	if len(coords) == 0 {
		return Region{}, eris.New("region: no coordinates to resolve")
	}
	for _, r := range catalog {
		if r.Contains(coords) {
			return r, nil
		}
	}
	// Unreachable: World contains everything.
	return World, nil
}
