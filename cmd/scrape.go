package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RKPYI/novel-scraper/internal/clock/system"
	"github.com/RKPYI/novel-scraper/internal/id/uuid"
	"github.com/RKPYI/novel-scraper/internal/scraper"
	"github.com/RKPYI/novel-scraper/internal/source"
)

type scrapeOptions struct {
	novelSlug    string
	site         string
	startChapter int
	endChapter   int
	novelOnly    bool
	skipExisting bool
	archiveDir   string
}

// newScrapeCmd creates and configures the 'scrape' subcommand.
func newScrapeCmd() *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrapes a novel and its chapters",
		Long: `Fetches the novel's landing page, persists its metadata, then walks
chapters from --start-chapter until --end-chapter (or until the source
runs out), saving each cleaned chapter to the database.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.novelSlug, "novel-slug", "", "novel slug on the source site (required)")
	cmd.Flags().StringVar(&opts.site, "site", "", "source site (defaults to source.name from config)")
	cmd.Flags().IntVar(&opts.startChapter, "start-chapter", 1, "first chapter number to attempt")
	cmd.Flags().IntVar(&opts.endChapter, "end-chapter", 0, "last chapter number to attempt (0 = until the source runs out)")
	cmd.Flags().BoolVar(&opts.novelOnly, "novel-only", false, "only scrape novel metadata, skip chapters")
	cmd.Flags().BoolVar(&opts.skipExisting, "skip-existing", true, "skip chapters already in the database")
	cmd.Flags().StringVar(&opts.archiveDir, "archive-dir", "", "directory for raw page snapshots (disabled when empty)")
	_ = cmd.MarkFlagRequired("novel-slug")

	return cmd
}

func runScrape(cmd *cobra.Command, opts *scrapeOptions) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg := appInstance.Config()
	logger := appInstance.Logger()

	site := opts.site
	if site == "" {
		site = cfg.Source.Name
	}
	src, err := source.New(site)
	if err != nil {
		return err
	}

	transport, err := scraper.NewCollyTransport(scraper.FetchConfig{
		UserAgent: cfg.Source.UserAgent,
		Timeout:   cfg.Timeout(),
	}, logger)
	if err != nil {
		return fmt.Errorf("init transport: %w", err)
	}
	policy := scraper.NewExponentialRetryPolicy(cfg.HTTP.MaxRetries, cfg.BackoffBase(), cfg.BackoffMax())
	client := scraper.NewClient(transport, policy, system.New(), cfg.RequestDelay(), logger)

	var archive scraper.Archive
	if opts.archiveDir != "" {
		fsArchive, err := scraper.NewFSArchive(opts.archiveDir, logger)
		if err != nil {
			return fmt.Errorf("init archive: %w", err)
		}
		archive = fsArchive
	}

	engine, err := scraper.NewEngine(scraper.Config{
		StartChapter: opts.startChapter,
		EndChapter:   opts.endChapter,
		SkipExisting: opts.skipExisting,
		NovelOnly:    opts.novelOnly,
	}, src, client, appInstance.Store(), archive, uuid.New(), logger)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	summary, err := engine.Run(cmd.Context(), opts.novelSlug)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", opts.novelSlug, err)
	}

	logger.Info("scrape finished",
		zap.String("slug", summary.Slug),
		zap.String("reason", string(summary.Reason)),
		zap.Int("chapters_saved", summary.ChaptersSaved),
		zap.Int("chapters_skipped", summary.ChaptersSkipped),
		zap.Int("total_words", summary.TotalWords),
	)
	return nil
}
