package render

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// loadLandRings reads polygon rings from a land shapefile (Natural Earth
// ne_110m_land works well at map scale). Non-polygon shapes are skipped.
func loadLandRings(path string) ([][]geom.Coord, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "render: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	var rings [][]geom.Coord
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		rings = append(rings, polygonRings(poly)...)
	}

	zap.L().Info("loaded land polygons",
		zap.String("path", path),
		zap.Int("rings", len(rings)),
		zap.Int("skipped", skipped),
	)
	return rings, nil
}

// polygonRings splits a shapefile polygon into its parts.
func polygonRings(poly *shp.Polygon) [][]geom.Coord {
	rings := make([][]geom.Coord, 0, len(poly.Parts))
	for i, start := range poly.Parts {
		end := len(poly.Points)
		if i+1 < len(poly.Parts) {
			end = int(poly.Parts[i+1])
		}
		ring := make([]geom.Coord, 0, end-int(start))
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
		}
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}
	return rings
}
