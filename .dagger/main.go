// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

// CI pipeline for branchgeo
package main

import (
	"context"
	"dagger/branchgeo/internal/dagger"
)

const (
	distrolessUser = "65532" // nonroot user in distroless images
	listenPort     = 8080
)

type Branchgeo struct{}

// Runs the unit tests. Tests that wait for the geocoding limiter are skipped
// unless full is set.
func (b *Branchgeo) Test(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build"]
	src *dagger.Directory,
	// +optional
	full bool,
) (string, error) {
	args := []string{"go", "test", "./..."}
	if !full {
		args = append(args, "-short")
	}

	return b.BuildCliBase(ctx, src).WithExec(args).Stdout(ctx)
}

// Runs the web server as a service, e.g.
// dagger call serve --src=. up --ports=8080:8080
func (b *Branchgeo) Serve(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build"]
	src *dagger.Directory,
) *dagger.Service {
	return b.BuildCli(ctx, src).
		WithEnvVariable("BRANCHGEO_LISTEN", "0.0.0.0:8080").
		WithExposedPort(listenPort).
		AsService(dagger.ContainerAsServiceOpts{
			Args: []string{"/app/branchgeo", "serve"},
		})
}
