// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package firmware locates the OVMF code and variables images needed to boot
// in UEFI mode, and maintains the writable scratch copy of the variables.
package firmware

import (
	"errors"
	"os"
	fp "path/filepath"
	"strings"

	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/fileutil"
	"github.com/purecloudlabs/osboot/pkg/log"
)

// Candidates is an ordered list of paths checked for one firmware component.
// The first path that exists wins; distro specific locations come before
// generic ones.
type Candidates []string

var (
	DefaultCode = Candidates{
		"/usr/share/OVMF/OVMF_CODE_4M.fd",     //debian, ubuntu
		"/usr/share/edk2/x64/OVMF_CODE.4m.fd", //arch
		"/usr/share/edk2/ovmf/OVMF_CODE.fd",   //fedora
		"/usr/share/OVMF/OVMF_CODE.fd",
	}
	DefaultVars = Candidates{
		"/usr/share/OVMF/OVMF_VARS_4M.fd",
		"/usr/share/edk2/x64/OVMF_VARS.4m.fd",
		"/usr/share/edk2/ovmf/OVMF_VARS.fd",
		"/usr/share/OVMF/OVMF_VARS.fd",
	}
)

// DefaultScratch is where the writable variables copy goes.
func DefaultScratch() string {
	return fp.Join(os.TempDir(), "osboot_OVMF_VARS.fd")
}

var errExhausted = errors.New("no candidate exists")

// Resolve returns the first candidate that exists. A stat error other than
// not-exist is returned rather than skipped.
func (c Candidates) Resolve(exists func(string) (bool, error)) (string, error) {
	for _, p := range c {
		ok, err := exists(p)
		if err != nil {
			return "", errs.Fs("stat", p, err)
		}
		if ok {
			return p, nil
		}
	}
	return "", errExhausted
}

// Pair is a resolved firmware set: the read-only code image and the
// variables template the scratch copy is made from.
type Pair struct {
	Code, VarsTemplate string
}

type Resolver struct {
	Code, Vars Candidates
	// Exists reports whether a path exists. Stat-based if nil.
	Exists func(string) (bool, error)
}

// Resolve searches both lists independently. Firmware is never synthesized or
// downloaded; if either list is exhausted the result is a ConfigError.
func (r Resolver) Resolve() (Pair, error) {
	exists := r.Exists
	if exists == nil {
		exists = fileutil.Exists
	}
	code, err := r.Code.Resolve(exists)
	if err == errExhausted {
		return Pair{}, notFound("code", r.Code)
	}
	if err != nil {
		return Pair{}, err
	}
	vars, err := r.Vars.Resolve(exists)
	if err == errExhausted {
		return Pair{}, notFound("variables", r.Vars)
	}
	if err != nil {
		return Pair{}, err
	}
	log.Logf("firmware: code %s, vars template %s", code, vars)
	return Pair{Code: code, VarsTemplate: vars}, nil
}

func notFound(what string, c Candidates) error {
	return errs.Config(
		"install OVMF (e.g. the ovmf or edk2-ovmf package), or list its location under [firmware] in osboot.toml",
		"UEFI firmware not found: no %s image at any of %s", what, strings.Join(c, ", "),
	)
}

// PrepareVars copies the variables template to scratch, replacing whatever
// a previous run left there. Each boot starts from pristine variables.
func PrepareVars(template, scratch string) error {
	if err := fileutil.CopyFile(template, scratch, 0644); err != nil {
		return errs.Fs("copy "+template+" to", scratch, err)
	}
	log.Logf("firmware: copied %s to %s", template, scratch)
	return nil
}
