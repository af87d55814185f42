// Package render draws species distribution maps: site points over an
// ocean basemap, cropped to the tightest region extent for the point set.
package render

import (
	"math"

	"github.com/fogleman/gg"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/yanirs/rls-data/internal/region"
)

// Basemap colors matching the published map style.
const (
	oceanColor = "#abcad7"
	landColor  = "#ffffff"
	pointColor = "#d95936"
)

// Options configures the renderer.
type Options struct {
	// Width and Height of the output raster. Defaults keep the catalog's
	// 4:3 viewport aspect.
	Width  int
	Height int
	// LandShapefile optionally points at a Natural Earth land polygon
	// shapefile used to draw coastlines over the ocean fill.
	LandShapefile string
}

// Renderer produces PNG distribution maps. It is immutable after
// construction and safe to share across rendering goroutines.
type Renderer struct {
	width  int
	height int
	land   [][]geom.Coord
}

// NewRenderer creates a renderer, loading land polygons when configured.
func NewRenderer(opts Options) (*Renderer, error) {
	if opts.Width <= 0 {
		opts.Width = 400
	}
	if opts.Height <= 0 {
		opts.Height = 320
	}
	r := &Renderer{width: opts.Width, height: opts.Height}
	if opts.LandShapefile != "" {
		land, err := loadLandRings(opts.LandShapefile)
		if err != nil {
			return nil, err
		}
		r.land = land
	}
	return r, nil
}

// Render resolves the region for coords, draws the map, and writes it to
// path. Returns the name of the region used.
func (r *Renderer) Render(coords []geom.Coord, path string) (string, error) {
	reg, err := region.Resolve(coords)
	if err != nil {
		return "", err
	}

	dc := gg.NewContext(r.width, r.height)
	dc.SetHexColor(oceanColor)
	dc.Clear()

	proj := newProjection(reg, r.width, r.height)

	if len(r.land) > 0 {
		dc.SetFillRuleEvenOdd()
		for _, ring := range r.land {
			r.traceRing(dc, proj, ring)
		}
		dc.SetHexColor(landColor)
		dc.Fill()
	}

	dc.SetHexColor(pointColor)
	for _, c := range coords {
		x, y := proj.point(c.X(), c.Y())
		dc.DrawCircle(x, y, 3)
	}
	dc.Fill()

	if err := dc.SavePNG(path); err != nil {
		return "", eris.Wrapf(err, "render: save %s", path)
	}
	return reg.Name, nil
}

// traceRing adds one land ring to the current path. A segment jumping more
// than half the canvas width crosses the projection seam; the ring is
// split into subpaths there instead of smearing a line across the map.
func (r *Renderer) traceRing(dc *gg.Context, proj projection, ring []geom.Coord) {
	started := false
	var prevX float64
	for _, c := range ring {
		x, y := proj.point(c.X(), c.Y())
		if !started || math.Abs(x-prevX) > proj.w/2 {
			dc.NewSubPath()
			dc.MoveTo(x, y)
			started = true
		} else {
			dc.LineTo(x, y)
		}
		prevX = x
	}
	dc.ClosePath()
}

// projection maps lon/lat onto the canvas for one region extent. It is a
// plate carrée with the region's reference meridian as the center.
type projection struct {
	central float64
	minLon  float64 // in shifted longitude space
	maxLon  float64
	minLat  float64
	maxLat  float64
	w, h    float64
}

func newProjection(reg region.Region, width, height int) projection {
	p := projection{
		central: reg.CentralLongitude,
		minLat:  reg.MinLat,
		maxLat:  reg.MaxLat,
		w:       float64(width),
		h:       float64(height),
	}
	switch {
	case reg.CentralLongitude == 0:
		p.minLon, p.maxLon = reg.MinLon, reg.MaxLon
	case reg.IsWorld():
		p.minLon, p.maxLon = -180, 180
	default:
		// A wraparound extent covers [MaxLon, 180] then [-180, MinLon];
		// shifting by 180 degrees makes it one contiguous interval.
		p.minLon, p.maxLon = reg.MaxLon-180, reg.MinLon+180
	}
	return p
}

// point projects a coordinate to canvas x/y.
func (p projection) point(lon, lat float64) (float64, float64) {
	l := shiftLon(lon, p.central)
	x := (l - p.minLon) / (p.maxLon - p.minLon) * p.w
	y := (p.maxLat - lat) / (p.maxLat - p.minLat) * p.h
	return x, y
}

// shiftLon recenters a longitude on the given meridian, into [-180, 180).
func shiftLon(lon, central float64) float64 {
	l := lon - central
	for l < -180 {
		l += 360
	}
	for l >= 180 {
		l -= 360
	}
	return l
}
