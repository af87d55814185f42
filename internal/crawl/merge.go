package crawl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/yanirs/rls-data/internal/model"
)

// MergeInput bundles the merger's inputs.
type MergeInput struct {
	// Species maps species id to name, in id order.
	Species []string
	// Categories maps species id to its resolved category code.
	Categories map[int]model.CategoryCode
	// Records is the crawl index matched case-insensitively by name.
	Records Index
	// ImgSrcDir is where the crawler stored raw images.
	ImgSrcDir string
	// DstDir is the output root; raw images are linked under DstDir/img.
	DstDir string
}

// Merge joins the survey species with crawled metadata. A species without
// a crawl match gets an empty common name, no URL, and no images; that is
// never an error. Raw image references are materialized as
// img/<owner-id>-<index>.<ext> links into the crawler's image directory.
func Merge(in MergeInput) (map[string]*model.SpeciesInfo, error) {
	out := make(map[string]*model.SpeciesInfo, len(in.Species))
	matched := 0

	for id, name := range in.Species {
		info := &model.SpeciesInfo{Name: name, Category: in.Categories[id]}
		out[strconv.Itoa(id)] = info

		rec, ok := in.Records.Lookup(name)
		if !ok {
			continue
		}
		matched++
		info.CommonName = rec.CommonName
		info.URL = rec.URL

		switch {
		case len(rec.Images) > 0:
			urls, err := materializeImages(rec, in.ImgSrcDir, in.DstDir)
			if err != nil {
				return nil, err
			}
			info.ImageURLs = urls
		default:
			info.ImageURLs = rec.ImageURLs
		}
	}

	zap.L().Info("merged species metadata",
		zap.Int("species", len(in.Species)),
		zap.Int("matched", matched),
	)
	return out, nil
}

// materializeImages links each raw image reference into dstDir/img under
// its canonical name and returns the site-relative URLs. Filesystems that
// refuse symlinks get a copy instead.
func materializeImages(rec Record, imgSrcDir, dstDir string) ([]string, error) {
	if err := os.MkdirAll(filepath.Join(dstDir, "img"), 0o755); err != nil {
		return nil, eris.Wrap(err, "crawl: create image dir")
	}
	urls := make([]string, 0, len(rec.Images))
	for _, ref := range rec.Images {
		ext := strings.TrimPrefix(filepath.Ext(ref.Path), ".")
		relPath := fmt.Sprintf("img/%s-%d.%s", rec.ID, len(urls), ext)
		src := filepath.Join(imgSrcDir, ref.Path)
		dst := filepath.Join(dstDir, relPath)

		if err := os.Symlink(src, dst); err != nil {
			if err := copyFile(src, dst); err != nil {
				return nil, eris.Wrapf(err, "crawl: materialize image %s", ref.Path)
			}
		}
		urls = append(urls, "/"+relPath)
	}
	return urls, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck

	_, err = io.Copy(out, in)
	return err
}
