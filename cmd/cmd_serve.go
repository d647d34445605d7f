// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jcodagnone/branchgeo/web"
	"github.com/spf13/cobra"
)

const defaultListen = "localhost:8080"

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web form and the /scrape JSON endpoint",
	Long: `Runs an HTTP server with a form at / and a JSON endpoint:

$ curl -s localhost:8080/scrape -d '{"url":"example-cu.org/locations","branch_names":"Main Branch"}'
[{"name":"Main Branch","address":"123 Main St, Springfield, IL 62701","latitude":39.79,"longitude":-89.64}]

The listen address defaults to BRANCHGEO_LISTEN, then to ` + defaultListen + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		listen := serveListen
		if listen == "" {
			listen = os.Getenv("BRANCHGEO_LISTEN")
		}

		if listen == "" {
			listen = defaultListen
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := pipeline.newService(ctx)
		if err != nil {
			return err
		}

		return web.NewServer(svc).Run(ctx, listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveListen,
		"listen",
		"",
		"Address to listen on (default $BRANCHGEO_LISTEN or "+defaultListen+")",
	)
}
