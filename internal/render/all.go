package render

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanirs/rls-data/internal/jsonio"
)

// AllInput carries everything needed to render the full map set.
type AllInput struct {
	// SiteCoords maps site code to its lon/lat coordinate.
	SiteCoords map[string]geom.Coord
	// SpeciesSites maps a species page slug to the site codes where the
	// species was observed. Species without a slug are not rendered.
	SpeciesSites map[string][]string
	// Concurrency bounds parallel renders. Defaults to 4.
	Concurrency int
}

// RenderAll writes __all-sites.png plus one <slug>.png per species into
// dstDir, which must be empty or missing. It returns how many maps fell
// into each region, keyed by region name.
func (r *Renderer) RenderAll(ctx context.Context, in AllInput, dstDir string) (map[string]int, error) {
	if err := jsonio.VerifyEmptyDir(dstDir); err != nil {
		return nil, err
	}
	if in.Concurrency <= 0 {
		in.Concurrency = 4
	}

	allCoords := make([]geom.Coord, 0, len(in.SiteCoords))
	for _, c := range in.SiteCoords {
		allCoords = append(allCoords, c)
	}
	if _, err := r.Render(allCoords, filepath.Join(dstDir, "__all-sites.png")); err != nil {
		return nil, eris.Wrap(err, "render: all-sites map")
	}

	slugs := make([]string, 0, len(in.SpeciesSites))
	for slug := range in.SpeciesSites {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	var mu sync.Mutex
	regionCounts := make(map[string]int)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(in.Concurrency)
	for _, slug := range slugs {
		slug := slug
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			coords := make([]geom.Coord, 0, len(in.SpeciesSites[slug]))
			for _, code := range in.SpeciesSites[slug] {
				c, ok := in.SiteCoords[code]
				if !ok {
					continue
				}
				coords = append(coords, c)
			}
			if len(coords) == 0 {
				zap.L().Warn("species has no mappable sites", zap.String("slug", slug))
				return nil
			}
			name, err := r.Render(coords, filepath.Join(dstDir, slug+".png"))
			if err != nil {
				return eris.Wrapf(err, "render: species map %s", slug)
			}
			mu.Lock()
			regionCounts[name]++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("rendered species maps",
		zap.Int("species", len(slugs)),
		zap.Any("regions", regionCounts),
	)
	return regionCounts, nil
}
