// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package paths

import (
	"errors"
	"os"
	fp "path/filepath"

	"github.com/BurntSushi/toml"
)

// RootEnv, if set, names the project root and skips the search.
const RootEnv = "OSBOOT_ROOT"

const (
	configMarker  = "osboot.toml"
	cargoManifest = "Cargo.toml"
)

var ErrNoRoot = errors.New("project root not found; run from inside the project, pass -C, or set " + RootEnv)

// FindRoot returns the project root: $OSBOOT_ROOT if set, otherwise the
// nearest directory at or above start containing osboot.toml. Failing that,
// the workspace root: the nearest directory whose Cargo.toml declares
// [workspace], or else the topmost one with a Cargo.toml. Member crates such
// as os/ and boot/ are never the root.
func FindRoot(start string) (string, error) {
	if rr := os.Getenv(RootEnv); len(rr) > 0 {
		return fp.Abs(rr)
	}
	start, err := fp.Abs(start)
	if err != nil {
		return "", err
	}
	if dir, ok := searchUp(start, configMarker); ok {
		return dir, nil
	}
	if dir, ok := workspaceRoot(start); ok {
		return dir, nil
	}
	return "", ErrNoRoot
}

func searchUp(dir, marker string) (string, bool) {
	for {
		if _, err := os.Stat(fp.Join(dir, marker)); err == nil {
			return dir, true
		}
		parent := fp.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func workspaceRoot(dir string) (string, bool) {
	var top string
	for {
		manifest := fp.Join(dir, cargoManifest)
		if _, err := os.Stat(manifest); err == nil {
			if declaresWorkspace(manifest) {
				return dir, true
			}
			top = dir
		}
		parent := fp.Dir(dir)
		if parent == dir {
			return top, top != ""
		}
		dir = parent
	}
}

// unparseable manifests count as plain crates
func declaresWorkspace(manifest string) bool {
	var m map[string]interface{}
	if _, err := toml.DecodeFile(manifest, &m); err != nil {
		return false
	}
	_, ok := m["workspace"]
	return ok
}
