package main

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yanirs/rls-data/internal/aggregate"
	"github.com/yanirs/rls-data/internal/crawl"
	"github.com/yanirs/rls-data/internal/jsonio"
	"github.com/yanirs/rls-data/internal/survey"
	"github.com/yanirs/rls-data/internal/taxonomy"
)

var (
	genMinCrawlItems int
	genMinSurveyRows int
	genRulesPath     string
)

var generateCmd = &cobra.Command{
	Use:   "generate <crawl-json> <survey-dir> <dst-dir>",
	Short: "Build the published dataset from crawl output and raw survey CSVs",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("generate"); err != nil {
			return err
		}

		crawlJSON, surveyDir, dstDir := args[0], args[1], args[2]
		minCrawlItems := cfg.Generate.MinCrawlItems
		if cmd.Flags().Changed("min-crawl-items") {
			minCrawlItems = genMinCrawlItems
		}
		minSurveyRows := cfg.Generate.MinSurveyRows
		if cmd.Flags().Changed("min-survey-rows") {
			minSurveyRows = genMinSurveyRows
		}

		runID := uuid.NewString()
		log := zap.L().With(zap.String("run_id", runID))
		log.Info("generating dataset",
			zap.String("crawl_json", crawlJSON),
			zap.String("survey_dir", surveyDir),
			zap.String("dst_dir", dstDir),
			zap.Int("min_crawl_items", minCrawlItems),
			zap.Int("min_survey_rows", minSurveyRows),
		)

		if err := jsonio.VerifyEmptyDir(dstDir); err != nil {
			return err
		}

		records, err := crawl.LoadRecords(crawlJSON, minCrawlItems)
		if err != nil {
			return err
		}

		rules, err := loadRules()
		if err != nil {
			return err
		}

		table, err := survey.Load(ctx, surveyDir, rules, survey.LoadOptions{
			ExpectedFiles: cfg.Generate.ExpectedSurveyFiles,
			MinRows:       minSurveyRows,
		})
		if err != nil {
			return err
		}
		log.Info("loaded surveys",
			zap.Int("rows", len(table.Rows)),
			zap.Int("species", len(table.Species)),
		)

		sites, err := aggregate.Sites(table)
		if err != nil {
			return err
		}
		if err := jsonio.WriteJSON(filepath.Join(dstDir, "api-site-surveys.json"), sites, "site summaries"); err != nil {
			return err
		}
		if err := jsonio.WriteJSON(filepath.Join(dstDir, "sites.json"), aggregate.SitesTable(sites), "site table"); err != nil {
			return err
		}
		if err := jsonio.WriteJSON(filepath.Join(dstDir, "surveys.json"), aggregate.SpeciesSiteCounts(table), "per-species site counts"); err != nil {
			return err
		}

		speciesInfo, err := crawl.Merge(crawl.MergeInput{
			Species:    table.Species,
			Categories: aggregate.SpeciesCategories(table),
			Records:    records,
			ImgSrcDir:  filepath.Join(filepath.Dir(crawlJSON), "img"),
			DstDir:     dstDir,
		})
		if err != nil {
			return err
		}
		if err := jsonio.WriteJSON(filepath.Join(dstDir, "api-species.json"), speciesInfo, "species metadata"); err != nil {
			return err
		}

		summary := aggregate.ProgramSummary(table, cfg.Generate.Program)
		if err := jsonio.WriteJSON(filepath.Join(dstDir, "summary.json"), summary, "program summary"); err != nil {
			return err
		}

		log.Info("dataset generated",
			zap.Int("sites", len(sites)),
			zap.Int("species", len(speciesInfo)),
		)
		return nil
	},
}

func loadRules() (*taxonomy.Ruleset, error) {
	if genRulesPath != "" {
		return taxonomy.LoadFile(genRulesPath)
	}
	return taxonomy.Default()
}

func init() {
	generateCmd.Flags().IntVar(&genMinCrawlItems, "min-crawl-items", 0, "minimum crawl records (default from config)")
	generateCmd.Flags().IntVar(&genMinSurveyRows, "min-survey-rows", 0, "minimum survey rows (default from config)")
	generateCmd.Flags().StringVar(&genRulesPath, "rules", "", "classification rules YAML (default embedded)")
	rootCmd.AddCommand(generateCmd)
}
