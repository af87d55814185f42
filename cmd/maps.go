package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/yanirs/rls-data/internal/aggregate"
	"github.com/yanirs/rls-data/internal/crawl"
	"github.com/yanirs/rls-data/internal/errs"
	"github.com/yanirs/rls-data/internal/jsonio"
	"github.com/yanirs/rls-data/internal/render"
)

var (
	mapsLandShapefile string
	mapsConcurrency   int
)

var mapsCmd = &cobra.Command{
	Use:   "maps <sites-json> <crawl-json> <surveys-json> <dst-dir>",
	Short: "Render per-species distribution maps from the generated dataset",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("maps"); err != nil {
			return err
		}

		landShapefile := cfg.Maps.LandShapefile
		if cmd.Flags().Changed("land-shapefile") {
			landShapefile = mapsLandShapefile
		}
		concurrency := cfg.Maps.Concurrency
		if cmd.Flags().Changed("concurrency") {
			concurrency = mapsConcurrency
		}

		var sitesTable aggregate.SiteTable
		if err := jsonio.LoadJSON(args[0], &sitesTable); err != nil {
			return err
		}
		siteCoords, err := siteCoordinates(sitesTable)
		if err != nil {
			return err
		}

		records, err := crawl.LoadRecords(args[1], 0)
		if err != nil {
			return err
		}

		var speciesSites map[string]map[string]int
		if err := jsonio.LoadJSON(args[2], &speciesSites); err != nil {
			return err
		}

		r, err := render.NewRenderer(render.Options{
			Width:         cfg.Maps.Width,
			Height:        cfg.Maps.Height,
			LandShapefile: landShapefile,
		})
		if err != nil {
			return err
		}

		counts, err := r.RenderAll(ctx, render.AllInput{
			SiteCoords:   siteCoords,
			SpeciesSites: speciesSlugSites(records, speciesSites),
			Concurrency:  concurrency,
		}, args[3])
		if err != nil {
			return err
		}
		zap.L().Info("maps rendered", zap.Any("regions", counts))
		return nil
	},
}

// siteCoordinates extracts site_code -> lon/lat from the sites table.
func siteCoordinates(table aggregate.SiteTable) (map[string]geom.Coord, error) {
	cols := make(map[string]int, len(table.Keys))
	for i, key := range table.Keys {
		cols[key] = i
	}
	for _, key := range []string{"site_code", "longitude", "latitude"} {
		if _, ok := cols[key]; !ok {
			return nil, eris.Wrapf(errs.ErrSchema, "maps: sites table missing %s", key)
		}
	}

	coords := make(map[string]geom.Coord, len(table.Rows))
	for _, row := range table.Rows {
		if len(row) != len(table.Keys) {
			return nil, eris.Wrap(errs.ErrSchema, "maps: ragged sites table row")
		}
		code, ok := row[cols["site_code"]].(string)
		if !ok {
			return nil, eris.Wrap(errs.ErrSchema, "maps: non-string site_code")
		}
		lon, lonOK := row[cols["longitude"]].(float64)
		lat, latOK := row[cols["latitude"]].(float64)
		if !lonOK || !latOK {
			return nil, eris.Wrapf(errs.ErrSchema, "maps: non-numeric coordinates for %s", code)
		}
		coords[code] = geom.Coord{lon, lat}
	}
	return coords, nil
}

// speciesSlugSites rekeys the per-species site counts by page slug. Species
// the crawl never saw have no page to render a map for and are skipped.
func speciesSlugSites(records crawl.Index, speciesSites map[string]map[string]int) map[string][]string {
	out := make(map[string][]string, len(speciesSites))
	for name, sites := range speciesSites {
		rec, ok := records.Lookup(name)
		if !ok || rec.ID == "" {
			continue
		}
		codes := make([]string, 0, len(sites))
		for code := range sites {
			codes = append(codes, code)
		}
		out[rec.ID] = codes
	}
	return out
}

func init() {
	mapsCmd.Flags().StringVar(&mapsLandShapefile, "land-shapefile", "", "land polygon shapefile for coastlines (empty draws ocean only)")
	mapsCmd.Flags().IntVar(&mapsConcurrency, "concurrency", 0, "parallel renders (default from config)")
	rootCmd.AddCommand(mapsCmd)
}
