// Package cli defines the sheetfeed command tree.
package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"sheetfeed/internal/config"
	"sheetfeed/internal/fetch"
	"sheetfeed/internal/logger"
	"sheetfeed/internal/pipeline"
	"sheetfeed/internal/sheets"
)

// Version is stamped by the build.
var Version = "dev"

// app holds the state shared by the subcommands, assembled by the root
// command's PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string
	dryRun     bool

	settings *config.Settings
	log      *slog.Logger
}

func (a *app) setup(*cobra.Command, []string) error {
	s, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		s.Logger.LogLevel = a.logLevel
	}
	log, err := logger.New(&s.Logger)
	if err != nil {
		return err
	}
	a.settings = s
	a.log = log
	return nil
}

// pipelineFor builds the pipeline with the configured fetcher and sink.
// A dry run gets no sink; nothing is appended.
func (a *app) pipelineFor(cmd *cobra.Command, render bool) (*pipeline.Pipeline, error) {
	var fetcher fetch.Fetcher
	if render {
		fetcher = fetch.NewBrowserFetcher(a.settings.Fetch.Timeout)
	} else {
		hf := fetch.NewHTTPFetcher(a.settings.Fetch.Timeout)
		hf.UserAgent = a.settings.Fetch.UserAgent
		fetcher = hf
	}

	var sink pipeline.Sink
	if !a.dryRun {
		client, err := sheets.NewClient(cmd.Context(), sheets.Config{
			SpreadsheetID:   a.settings.Sheets.SpreadsheetID,
			Title:           a.settings.Sheets.WorksheetTitle,
			CredentialsFile: a.settings.Sheets.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		sink = client
	}
	return pipeline.New(a.log, fetcher, sink), nil
}

// NewRootCmd builds the sheetfeed command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sheetfeed",
		Short: "Extract cosmetic ingredient standards into a Google Sheet",
		Long: `sheetfeed reads the preservative and UV-filter concentration tables
published by the Ministry of Health, Labour and Welfare, either from the
official PDF or from the online document viewer, and appends one row per
ingredient to a Google Sheets worksheet.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "extract without appending to the sheet")

	rootCmd.AddCommand(newPDFCmd(a))
	rootCmd.AddCommand(newHTMLCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newPDFCmd(a *app) *cobra.Command {
	var (
		pages     string
		exclude   []int
		lineScale float64
		jsonOut   string
	)

	cmd := &cobra.Command{
		Use:   "pdf [url]",
		Short: "Extract tables from the published PDF",
		Long: `pdf downloads the standards PDF, detects its ruled tables and appends
one row per ingredient. Without an argument the configured default
document is used. Page selection accepts "all", "auto" (every page from
the configured start page) or explicit specs like "2-10" and "2,4,9".`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls := a.settings.Lattice
			if pages != "" {
				ls.Pages = pages
			}
			if len(exclude) > 0 {
				ls.ExcludePages = exclude
			}
			if lineScale > 0 {
				ls.LineScale = lineScale
			}

			url := a.settings.Fetch.PDFURL
			if len(args) == 1 {
				url = args[0]
			}

			p, err := a.pipelineFor(cmd, false)
			if err != nil {
				return err
			}
			start := time.Now()
			n, err := p.RunPDF(cmd.Context(), pipeline.PDFOptions{
				URL:     url,
				Lattice: ls,
				JSONOut: jsonOut,
				DryRun:  a.dryRun,
			})
			if err != nil {
				return err
			}
			a.log.Info("pdf run finished", "rows", n, "elapsed", time.Since(start))
			return nil
		},
	}
	cmd.Flags().StringVar(&pages, "pages", "", `page spec: "all", "auto", "2-10", "2,4,9"`)
	cmd.Flags().IntSliceVar(&exclude, "exclude", nil, "pages to skip (1-indexed)")
	cmd.Flags().Float64Var(&lineScale, "line-scale", 0, "ruling detection sensitivity")
	cmd.Flags().StringVar(&jsonOut, "json-out", "", "also dump extracted records to this JSON file")
	return cmd
}

func newHTMLCmd(a *app) *cobra.Command {
	var (
		iframeFirst bool
		render      bool
	)

	cmd := &cobra.Command{
		Use:   "html [url]",
		Short: "Extract tables from the online document viewer",
		Long: `html fetches the document viewer page and reads its standards tables.
The viewer serves the document body inside an iframe; by default the
iframe document is resolved and parsed. Use --render when the page
builds its content with JavaScript.`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := a.settings.Fetch.HTMLURL
			if len(args) == 1 {
				url = args[0]
			}
			if !cmd.Flags().Changed("iframe-first") {
				iframeFirst = a.settings.Fetch.IframeFirst
			}
			render = render || a.settings.Fetch.RenderWithChrome

			p, err := a.pipelineFor(cmd, render)
			if err != nil {
				return err
			}
			start := time.Now()
			n, err := p.RunHTML(cmd.Context(), pipeline.HTMLOptions{
				URL:         url,
				IframeFirst: iframeFirst,
				DryRun:      a.dryRun,
			})
			if err != nil {
				return err
			}
			a.log.Info("html run finished", "rows", n, "elapsed", time.Since(start))
			return nil
		},
	}
	cmd.Flags().BoolVar(&iframeFirst, "iframe-first", true, "resolve the viewer iframe before parsing")
	cmd.Flags().BoolVar(&render, "render", false, "render the page in headless Chrome first")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sheetfeed version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sheetfeed", Version)
		},
	}
}
