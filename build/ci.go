// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//go:build mage

package main

import (
	"context"
	"fmt"
	"os"
	fp "path/filepath"

	"github.com/magefile/mage/mg"

	"github.com/purecloudlabs/osboot/pkg/fileutil"
	"github.com/purecloudlabs/osboot/pkg/launch"
)

//targets for CI to run

type CI mg.Namespace

func (CI) UnitTestStage(ctx context.Context) {
	out := fp.Join(os.Getenv("WORKSPACE"), "unit_test_out.xml")
	newctx := context.WithValue(ctx, junitKey{}, out)
	mg.CtxDeps(newctx, Tests.Unit, Tests.Lint)
}

func (CI) BuildStage(ctx context.Context) {
	mg.CtxDeps(ctx, Image)
}

// Assembles the emulator command for both modes without booting. Needs OVMF
// on the build host.
func (CI) SmokeStage(ctx context.Context) error {
	mg.CtxDeps(ctx, Image)
	cfg, err := project(ctx)
	if err != nil {
		return err
	}
	c := launch.NewConfigurator(cfg)
	for _, m := range []launch.Mode{launch.BIOS, launch.UEFI} {
		if _, err = os.Stat(c.ImagePath(m)); os.IsNotExist(err) {
			fmt.Printf("no %s image, skipping\n", m)
			continue
		}
		spec, err := c.Prepare(string(m))
		if err != nil {
			return err
		}
		if err = (launch.Launcher{DryRun: true}).Launch(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

//copy kernel and images to $WORKSPACE/artifacts
func (CI) Artifacts(ctx context.Context) error {
	cfg, err := project(ctx)
	if err != nil {
		return err
	}
	dir := fp.Join(os.Getenv("WORKSPACE"), "artifacts")
	if err = os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	l := cfg.Layout
	for _, fname := range []string{l.KernelArtifact(), l.BiosImagePath(), l.UefiImagePath()} {
		if _, err = os.Stat(fname); os.IsNotExist(err) {
			fmt.Println("skipping missing", fname)
			continue
		}
		if err = fileutil.CopyFile(fname, fp.Join(dir, fp.Base(fname)), 0644); err != nil {
			return err
		}
	}
	return nil
}
