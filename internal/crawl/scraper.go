package crawl

import (
	"context"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanirs/rls-data/internal/fetcher"
)

// DefaultSitemapURL lists every species page on the site.
const DefaultSitemapURL = "https://reeflifesurvey.com/sitemap-species.xml"

// ScrapeOptions configures the species scraper.
type ScrapeOptions struct {
	SitemapURL  string
	Concurrency int
}

// Scraper collects per-species metadata (name, common name, images) from
// the species website. cache may be nil to disable page caching.
type Scraper struct {
	fetcher fetcher.Fetcher
	cache   *PageCache
	opts    ScrapeOptions
}

// NewScraper creates a scraper over the given fetcher.
func NewScraper(f fetcher.Fetcher, cache *PageCache, opts ScrapeOptions) *Scraper {
	if opts.SitemapURL == "" {
		opts.SitemapURL = DefaultSitemapURL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Scraper{fetcher: f, cache: cache, opts: opts}
}

var (
	locRe    = regexp.MustCompile(`(?is)<loc>\s*(.*?)\s*</loc>`)
	nameRe   = regexp.MustCompile(`(?is)<h1[^>]*class="[^"]*MuiTypography-root[^"]*"[^>]*>(.*?)</h1>`)
	commonRe = regexp.MustCompile(`(?is)<span[^>]*class="[^"]*MuiTypography-subtitle1[^"]*"[^>]*>(.*?)</span>`)
	imgRe    = regexp.MustCompile(`(?i)<img[^>]+src="([^"]+)"`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
)

// Run fetches the sitemap, visits every species page, and returns the
// parsed records sorted by name.
func (s *Scraper) Run(ctx context.Context) ([]Record, error) {
	log := zap.L().With(zap.String("component", "scraper"))

	links, err := s.speciesLinks(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("parsed sitemap", zap.Int("species_pages", len(links)))

	var mu sync.Mutex
	var records []Record

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for _, link := range links {
		link := link
		g.Go(func() error {
			body, err := s.fetchPage(gctx, link)
			if err != nil {
				return err
			}
			rec := parseSpeciesPage(link, body)
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	log.Info("scrape complete", zap.Int("records", len(records)))
	return records, nil
}

// speciesLinks fetches and parses the sitemap. Image-host links are not
// species pages and are skipped.
func (s *Scraper) speciesLinks(ctx context.Context) ([]string, error) {
	body, err := s.fetcher.Download(ctx, s.opts.SitemapURL)
	if err != nil {
		return nil, eris.Wrap(err, "scraper: fetch sitemap")
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrap(err, "scraper: read sitemap")
	}

	var links []string
	for _, m := range locRe.FindAllStringSubmatch(string(data), -1) {
		link := strings.TrimSpace(m[1])
		if strings.HasPrefix(link, "https://images.reeflifesurvey") {
			continue
		}
		links = append(links, link)
	}
	return links, nil
}

// fetchPage returns a page body, preferring the cache.
func (s *Scraper) fetchPage(ctx context.Context, url string) ([]byte, error) {
	if s.cache != nil {
		if body, ok, err := s.cache.Get(url); err != nil {
			return nil, err
		} else if ok {
			return body, nil
		}
	}

	r, err := s.fetcher.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: fetch %s", url)
	}
	defer r.Close() //nolint:errcheck

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: read %s", url)
	}
	if s.cache != nil {
		if err := s.cache.Put(url, body); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// parseSpeciesPage extracts a Record from a species page. Pages with an
// unexpected structure yield a record with only the id and url filled in;
// the merger treats those like an absent match.
func parseSpeciesPage(url string, body []byte) Record {
	page := string(body)
	rec := Record{ID: slugFromURL(url), URL: url}

	if m := nameRe.FindStringSubmatch(page); m != nil {
		rec.Name = cleanText(m[1])
	}
	if m := commonRe.FindStringSubmatch(page); m != nil {
		// The site renders alternate common names pipe-separated.
		var names []string
		for _, part := range strings.Split(cleanText(m[1]), "|") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
		rec.CommonName = strings.Join(names, ", ")
	}

	// Gallery images live inside the swiper carousel; anything before it
	// (logos, icons) is not a species photo.
	if idx := strings.Index(page, `class="swiper"`); idx >= 0 {
		rec.ImageURLs = []string{}
		for _, m := range imgRe.FindAllStringSubmatch(page[idx:], -1) {
			rec.ImageURLs = append(rec.ImageURLs, m[1])
		}
	}
	return rec
}

// slugFromURL returns the species slug: the last path segment.
func slugFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(s, "")))
}
