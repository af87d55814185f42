package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanirs/rls-data/internal/fetcher"
	"github.com/yanirs/rls-data/internal/survey"
)

var downloadCmd = &cobra.Command{
	Use:   "download <dst-dir>",
	Short: "Download raw survey CSV exports into an empty directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("download"); err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimiters: fetcher.DefaultRateLimiters(),
		})

		zap.L().Info("downloading survey data",
			zap.String("base_url", cfg.Download.BaseURL),
			zap.String("dir", args[0]),
		)
		return survey.DownloadAll(ctx, f, cfg.Download.BaseURL, args[0])
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
