package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanirs/rls-data/internal/crawl"
	"github.com/yanirs/rls-data/internal/fetcher"
	"github.com/yanirs/rls-data/internal/jsonio"
)

var (
	scrapeCachePath   string
	scrapeConcurrency int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <dst-json>",
	Short: "Crawl the species website and write the crawl records JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		cachePath := cfg.Scrape.CachePath
		if cmd.Flags().Changed("cache") {
			cachePath = scrapeCachePath
		}
		concurrency := cfg.Scrape.Concurrency
		if cmd.Flags().Changed("concurrency") {
			concurrency = scrapeConcurrency
		}

		var cache *crawl.PageCache
		if cachePath != "" {
			c, err := crawl.OpenPageCache(cachePath)
			if err != nil {
				return err
			}
			defer c.Close()
			cache = c
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})
		s := crawl.NewScraper(f, cache, crawl.ScrapeOptions{
			SitemapURL:  cfg.Scrape.SitemapURL,
			Concurrency: concurrency,
		})

		records, err := s.Run(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("scrape finished", zap.Int("records", len(records)))

		return jsonio.WriteJSON(args[0], records, "crawl records")
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeCachePath, "cache", "", "sqlite page cache path (empty disables caching)")
	scrapeCmd.Flags().IntVar(&scrapeConcurrency, "concurrency", 0, "parallel page fetches (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}
