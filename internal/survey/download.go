package survey

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanirs/rls-data/internal/fetcher"
	"github.com/yanirs/rls-data/internal/jsonio"
)

// DataTypes are the survey-method data products published by the web
// feature service, one CSV each.
var DataTypes = []string{
	"m0_off_transect_sighting",
	"m1",
	"m2_cryptic_fish",
	"m2_inverts",
}

// DefaultBaseURL is the public geoserver OWS endpoint.
const DefaultBaseURL = "https://geoserver-portal.aodn.org.au/geoserver/ows"

// WFSURL builds the GetFeature CSV export URL for one data type.
func WFSURL(baseURL, dataType string) string {
	return fmt.Sprintf(
		"%s?SERVICE=WFS&outputFormat=csv&REQUEST=GetFeature&VERSION=1.0.0&typeName=imos:ep_%s_public_data",
		baseURL, dataType,
	)
}

// DownloadAll fetches every survey data product into dir, which must be a
// fresh directory. Files download concurrently; each data product is
// independent of the rest.
func DownloadAll(ctx context.Context, f fetcher.Fetcher, baseURL, dir string) error {
	if err := jsonio.VerifyEmptyDir(dir); err != nil {
		return err
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, dataType := range DataTypes {
		dataType := dataType
		g.Go(func() error {
			url := WFSURL(baseURL, dataType)
			path := filepath.Join(dir, dataType+".csv")
			zap.L().Info("downloading survey data",
				zap.String("data_type", dataType),
				zap.String("path", path),
			)
			n, err := f.DownloadToFile(gctx, url, path)
			if err != nil {
				return eris.Wrapf(err, "survey: download %s", dataType)
			}
			zap.L().Info("saved survey data",
				zap.String("data_type", dataType),
				zap.Int64("bytes", n),
			)
			return nil
		})
	}
	return g.Wait()
}
