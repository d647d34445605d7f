// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jcodagnone/branchgeo/matcher"
	"github.com/jcodagnone/branchgeo/utils/htmlutils"
	"github.com/jcodagnone/branchgeo/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/net/html/charset"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugMatchNames string

var debugMatchCmd = &cobra.Command{
	Use:   "match [file.html]",
	Short: "Run only the address matcher over a local page",
	Long: `Reads a page from the file, or from stdin, and prints what the matcher
finds for every name. Nothing is geocoded.

$ curl -s https://example-cu.org/locations | branchgeo debug match --names "Main Branch"
{"name":"Main Branch","matched_name":"Main Branch","address":"123 Main St, Springfield, IL 62701",…}`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		names := textutils.SplitList(debugMatchNames)
		if len(names) == 0 {
			return errors.New("--names is required")
		}

		var input io.Reader = os.Stdin

		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			input = f
		}

		r, err := charset.NewReader(input, "text/html")
		if err != nil {
			return fmt.Errorf("detecting charset: %w", err)
		}

		doc, err := htmlutils.AsNode(r)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)

		for i, m := range matcher.FindAll(doc, names) {
			out := struct {
				Name string `json:"name"`
				matcher.Match
			}{names[i], m}

			if err := enc.Encode(out); err != nil {
				return err
			}
		}

		return nil
	},
}

var debugGeocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Geocode addresses read from stdin",
	Long: `Reads one address per line and prints the address followed by the
coordinates, the provider and its confidence.

$ echo "1600 Pennsylvania Ave NW, Washington, DC 20500" | branchgeo debug geocode
1600 Pennsylvania Ave NW, Washington, DC 20500	38.8976997	-77.0365532	nominatim	high`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, err := pipeline.newGeocoder(cmd.Context())
		if err != nil {
			return err
		}

		input := os.Stdin
		if isatty.IsTerminal(input.Fd()) {
			fmt.Fprintln(os.Stderr, "Enter addresses to geocode, one per line…")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			address := strings.TrimSpace(scanner.Text())
			if address == "" {
				continue
			}

			res, err := g.Geocode(cmd.Context(), address)
			if err != nil {
				fmt.Printf("%s\t%q\n", address, err)

				continue
			}

			fmt.Printf("%s\t%.7f\t%.7f\t%s\t%s\n", address, res.Lat, res.Lng, res.Provider, res.Confidence)
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugMatchCmd)
	debugCmd.AddCommand(debugGeocodeCmd)
	debugMatchCmd.Flags().StringVar(
		&debugMatchNames,
		"names",
		"",
		"Comma separated branch names",
	)
}
