// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"dagger/branchgeo/internal/dagger"
)

const (
	goImage     = "golang:1.25.5-bookworm"
	runImage    = "gcr.io/distroless/static-debian12"
	builder     = "builder"
	builderUID  = "1000"
	builderHome = "/home/" + builder
	binaryPath  = "build/branchgeo"
)

var goTools = []string{
	"github.com/golangci/golangci-lint/cmd/golangci-lint@latest",
	"github.com/securego/gosec/v2/cmd/gosec@latest",
	"golang.org/x/vuln/cmd/govulncheck@latest",
	"github.com/google/addlicense@latest",
}

// goToolchain is an unprivileged Go container with the module and build
// caches mounted.
func goToolchain() *dagger.Container {
	owned := dagger.ContainerWithMountedCacheOpts{Owner: builder}

	return dag.Container().
		From(goImage).
		WithExec([]string{"useradd", "-m", "-u", builderUID, builder}).
		WithMountedCache("/go/pkg", dag.CacheVolume("branchgeo-gomod"), owned).
		WithMountedCache(builderHome+"/.cache", dag.CacheVolume("branchgeo-gobuild"), owned).
		WithEnvVariable("GOCACHE", builderHome+"/.cache/go-build").
		WithEnvVariable("CGO_ENABLED", "0").
		WithWorkdir("/src")
}

// withSource downloads modules from go.mod/go.sum alone, then adds the tree.
func withSource(c *dagger.Container, src *dagger.Directory) *dagger.Container {
	owned := dagger.ContainerWithFileOpts{Owner: builder}

	return c.
		WithFile("go.mod", src.File("go.mod"), owned).
		WithFile("go.sum", src.File("go.sum"), owned).
		WithExec([]string{"chown", builder + ":" + builder, "/src"}).
		WithUser(builder).
		WithExec([]string{"go", "mod", "download"}).
		WithDirectory("/src", src, dagger.ContainerWithDirectoryOpts{Owner: builder})
}

// BuildCliBase compiles the branchgeo binary into /src/build.
func (b *Branchgeo) BuildCliBase(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build"]
	src *dagger.Directory,
) *dagger.Container {
	return withSource(goToolchain(), src).
		WithExec([]string{"go", "build", "-o", binaryPath, "main.go"})
}

// BuildCliValidate runs formatting, vet, lint, security and license checks.
func (b *Branchgeo) BuildCliValidate(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build"]
	src *dagger.Directory,
) *dagger.Container {
	c := b.BuildCliBase(ctx, src)
	for _, tool := range goTools {
		c = c.WithExec([]string{"go", "install", tool})
	}

	return c.
		// gofmt -l lists unformatted files but exits 0
		WithExec([]string{"sh", "-c", `test -z "$(gofmt -l $(go list -f '{{.Dir}}' ./...))"`}).
		WithExec([]string{"go", "vet", "./..."}).
		WithExec([]string{"golangci-lint", "run", "--timeout", "5m", "./..."}).
		WithExec([]string{"gosec", "-no-fail", "-exclude-generated", "-exclude-dir", ".dagger", "./..."}).
		WithExec([]string{"govulncheck", "./..."}).
		WithExec([]string{
			"addlicense", "--check",
			"--ignore", "build/**",
			"--ignore", ".dagger/internal/**",
			"-c", "The BranchGeo Authors",
			"-l", "apache",
			"-s=only",
			".",
		})
}

// BuildCli packages the binary into a distroless image.
func (b *Branchgeo) BuildCli(
	ctx context.Context,
	// +defaultPath="/"
	// +ignore=["build"]
	src *dagger.Directory,
) *dagger.Container {
	bin := b.BuildCliBase(ctx, src).File("/src/" + binaryPath)

	return dag.Container().
		From(runImage).
		WithWorkdir("/app").
		WithFile("/app/branchgeo", bin).
		WithUser(distrolessUser).
		WithEntrypoint([]string{"/app/branchgeo"})
}
