package crawl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanirs/rls-data/internal/model"
)

func TestMerge_NoMatchIsNotAnError(t *testing.T) {
	out, err := Merge(MergeInput{
		Species:    []string{"Foo bar"},
		Categories: map[int]model.CategoryCode{0: model.CategoryM2},
		Records:    Index{},
	})
	require.NoError(t, err)

	info := out["0"]
	require.NotNil(t, info)
	assert.Equal(t, "Foo bar", info.Name)
	assert.Empty(t, info.CommonName)
	assert.Empty(t, info.URL)
	assert.Empty(t, info.ImageURLs)
	assert.Equal(t, model.CategoryM2, info.Category)
}

func TestMerge_PreResolvedImageURLs(t *testing.T) {
	idx := Index{}
	idx[NormalizeName("Foo bar")] = Record{
		ID:         "foo-bar",
		Name:       "Foo bar",
		CommonName: "Foo",
		URL:        "https://example.com/foo-bar/",
		ImageURLs:  []string{"https://images.example.com/foo.jpg"},
	}

	out, err := Merge(MergeInput{
		Species:    []string{"Foo bar"},
		Categories: map[int]model.CategoryCode{0: model.CategoryM1},
		Records:    idx,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://images.example.com/foo.jpg"}, out["0"].ImageURLs)
	assert.Equal(t, "Foo", out["0"].CommonName)
	assert.Equal(t, "https://example.com/foo-bar/", out["0"].URL)
}

func TestMerge_MaterializesRawImages(t *testing.T) {
	imgSrc := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(imgSrc, "full"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(imgSrc, "full", "one.jpg"), []byte("jpeg-1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(imgSrc, "full", "two.png"), []byte("png-2"), 0o644))

	dst := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "img"), 0o755))

	idx := Index{}
	idx[NormalizeName("Foo bar")] = Record{
		ID:   "foo-bar",
		Name: "Foo bar",
		Images: []ImageRef{
			{Path: "full/one.jpg"},
			{Path: "full/two.png"},
		},
	}

	out, err := Merge(MergeInput{
		Species:    []string{"Foo bar"},
		Categories: map[int]model.CategoryCode{0: model.CategoryBoth},
		Records:    idx,
		ImgSrcDir:  imgSrc,
		DstDir:     dst,
	})
	require.NoError(t, err)

	// Canonical site-relative paths, sequence index from 0, original extension.
	assert.Equal(t, []string{"/img/foo-bar-0.jpg", "/img/foo-bar-1.png"}, out["0"].ImageURLs)

	// Links resolve to the crawler's files.
	data, err := os.ReadFile(filepath.Join(dst, "img", "foo-bar-0.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-1", string(data))
	data, err = os.ReadFile(filepath.Join(dst, "img", "foo-bar-1.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-2", string(data))
}

func TestMerge_MissingRawImageFails(t *testing.T) {
	dst := t.TempDir()
	// img subdirectory missing entirely: both symlink and copy must fail.
	idx := Index{}
	idx[NormalizeName("Foo bar")] = Record{
		ID:     "foo-bar",
		Name:   "Foo bar",
		Images: []ImageRef{{Path: "full/one.jpg"}},
	}

	_, err := Merge(MergeInput{
		Species:    []string{"Foo bar"},
		Categories: map[int]model.CategoryCode{0: model.CategoryM1},
		Records:    idx,
		ImgSrcDir:  filepath.Join(t.TempDir(), "missing"),
		DstDir:     filepath.Join(dst, "also-missing"),
	})
	assert.Error(t, err)
}
