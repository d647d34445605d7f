// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"

	"github.com/jcodagnone/branchgeo/branches"
	"github.com/jcodagnone/branchgeo/scraper"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url> <names>",
	Short: "Find and geocode the branches of a page, printing JSON",
	Long: `Names are comma separated. The output is the same JSON array /scrape returns.

$ branchgeo scrape example-cu.org/locations "Main Branch, Downtown Office"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := branches.ParseNames(args[1])
		if len(names) == 0 {
			return errors.New("at least one branch name is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		svc, err := pipeline.newService(ctx)
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(names),
				progressbar.OptionSetDescription("Geocoding"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		results, err := svc.ScrapeWithProgress(ctx, scraper.NormalizeURL(args[0]), names,
			func(_, _ int, r branches.Result) {
				if bar != nil {
					bar.Describe(r.Name)
					_ = bar.Add(1)
				}
			})
		if bar != nil {
			_ = bar.Finish()
		}

		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)

		return enc.Encode(results)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
