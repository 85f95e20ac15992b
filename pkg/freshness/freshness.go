// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package freshness decides whether a build artifact must be thrown away
// because an input the toolchain does not track changed after it was built.
//
// Only one input is compared. Everything else the artifact depends on is left
// to the toolchain's own dependency tracking.
package freshness

import (
	"context"
	"os"

	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/log"
)

// Stale reports whether artifact exists and input's mtime is strictly after
// artifact's. Equal timestamps are not stale. A missing artifact is never
// stale: the build creates it anyway. Any other stat failure is returned.
func Stale(input, artifact string) (bool, error) {
	artFi, err := os.Stat(artifact)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errs.Fs("stat", artifact, err)
	}
	inFi, err := os.Stat(input)
	if err != nil {
		return false, errs.Fs("compare mtime of", input, err)
	}
	return inFi.ModTime().After(artFi.ModTime()), nil
}

// Checker ties a staleness test to the narrow invalidation it triggers.
type Checker struct {
	Input, Artifact string
	// Clean clears the toolchain's cache entry for the one unit producing
	// Artifact, so the next build recompiles that unit and nothing else.
	Clean func(ctx context.Context) error
}

// Invalidate deletes a stale artifact and runs Clean. It returns true if it
// did so. Failures are fatal; a stale artifact is never silently kept.
func (c Checker) Invalidate(ctx context.Context) (bool, error) {
	stale, err := Stale(c.Input, c.Artifact)
	if err != nil || !stale {
		return false, err
	}
	log.Msgf("%s changed since last build, forcing rebuild of %s", c.Input, c.Artifact)
	if err = os.Remove(c.Artifact); err != nil && !os.IsNotExist(err) {
		return false, errs.Fs("remove", c.Artifact, err)
	}
	if c.Clean != nil {
		if err = c.Clean(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}
