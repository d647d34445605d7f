// Copyright 2026 The BranchGeo Authors
// SPDX-License-Identifier: Apache-2.0

package branches

import (
	"github.com/jcodagnone/branchgeo/geocoding"
	"github.com/jcodagnone/branchgeo/matcher"
	"github.com/jcodagnone/branchgeo/spatial"
)

// Result is the outcome for one requested branch name. Address, Latitude and
// Longitude hold spatial.Placeholder when they could not be resolved.
type Result struct {
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	Latitude    spatial.Coordinate `json:"latitude"`
	Longitude   spatial.Coordinate `json:"longitude"`
	MatchedName string             `json:"matched_name,omitempty"`
	Street      string             `json:"street,omitempty"`
	City        string             `json:"city,omitempty"`
	State       string             `json:"state,omitempty"`
	Zip         string             `json:"zip,omitempty"`
}

// Located reports whether coordinates were resolved.
func (r Result) Located() bool {
	return r.Latitude.Valid && r.Longitude.Valid
}

func newResult(name string, m matcher.Match, geo *geocoding.Result) Result {
	ret := Result{
		Name:        name,
		Address:     spatial.Placeholder,
		MatchedName: m.MatchedName,
		Street:      m.Street,
		City:        m.City,
		State:       m.State,
		Zip:         m.Zip,
	}

	if m.Found() {
		ret.Address = m.Address
	}

	if geo != nil {
		ret.Latitude, ret.Longitude = spatial.Coordinates(&geo.Point)
	}

	return ret
}
