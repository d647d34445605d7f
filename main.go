// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/branchgeo/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
