// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package kbuild drives the toolchain: installing prerequisites, compiling the
// kernel for the bare-metal target and packaging it into bootable disk images.
package kbuild

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/purecloudlabs/osboot/build/paths"
	"github.com/purecloudlabs/osboot/pkg/config"
	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/freshness"
	"github.com/purecloudlabs/osboot/pkg/log"
	"github.com/purecloudlabs/osboot/pkg/runner"
)

type Driver struct {
	Layout    paths.Layout
	Toolchain config.Toolchain
	Runner    runner.Runner
}

// New returns a Driver running the toolchain in the project root. With
// verbose, subprocess output is streamed rather than shown only on failure.
func New(cfg *config.Config, verbose bool) *Driver {
	return &Driver{
		Layout:    cfg.Layout,
		Toolchain: cfg.Toolchain,
		Runner:    runner.Runner{Dir: cfg.Layout.Root, Verbose: verbose},
	}
}

// Setup installs the toolchain components and the target's standard library.
func (d *Driver) Setup(ctx context.Context) error {
	if d.Toolchain.Rustup == "" {
		return errs.Config("set [build] rustup in "+config.FileName, "no toolchain installer configured")
	}
	if len(d.Toolchain.Components) > 0 {
		log.Msgf("installing toolchain components %v", d.Toolchain.Components)
		args := append([]string{"component", "add"}, d.Toolchain.Components...)
		if err := d.Runner.Run(ctx, d.Toolchain.Rustup, args...); err != nil {
			return err
		}
	}
	log.Msgf("installing target %s", d.Layout.Triple)
	return d.Runner.Run(ctx, d.Toolchain.Rustup, "target", "add", d.Layout.Triple)
}

// Kernel compiles the kernel unit. If the layout descriptor changed since the
// artifact was produced, the artifact and the unit's cached build state are
// discarded first; the toolchain would otherwise consider the artifact current.
func (d *Driver) Kernel(ctx context.Context) error {
	l := d.Layout
	chk := freshness.Checker{
		Input:    l.LayoutDescriptor(),
		Artifact: l.KernelArtifact(),
		Clean: func(ctx context.Context) error {
			return d.cargo(ctx, append([]string{"clean", "-p", l.KernelUnit}, d.targetArgs()...)...)
		},
	}
	if _, err := chk.Invalidate(ctx); err != nil {
		var fe *errs.FsError
		if errors.As(err, &fe) && fe.Path == chk.Input && os.IsNotExist(fe.Err) {
			return errs.Config("set [build] linker_script in "+config.FileName,
				"layout descriptor %s not found", chk.Input)
		}
		return err
	}
	log.Msgf("building %s for %s (%s)", l.KernelUnit, l.Triple, l.Profile)
	args := append([]string{"build", "-p", l.KernelUnit}, d.targetArgs()...)
	return d.cargo(ctx, append(args, d.Toolchain.KernelArgs...)...)
}

// Image builds the kernel, then repackages it. Packaging is always redone:
// the packager's own change tracking does not see the kernel artifact.
func (d *Driver) Image(ctx context.Context) error {
	if err := d.Kernel(ctx); err != nil {
		return err
	}
	l := d.Layout
	art := l.KernelArtifact()
	if _, err := os.Stat(art); err != nil {
		if os.IsNotExist(err) {
			return errs.Config("run `osboot build` and check its output", "kernel binary not found at %s", art)
		}
		return errs.Fs("stat", art, err)
	}
	log.Msgf("packaging %s into disk images", art)
	if err := d.cargo(ctx, "clean", "-p", l.PackagerUnit); err != nil {
		return err
	}
	args := append([]string{"build", "-p", l.PackagerUnit}, d.Toolchain.PackagerArgs...)
	if err := d.cargo(ctx, args...); err != nil {
		return err
	}
	return d.report(append([]string{d.Toolchain.Cargo}, args...))
}

var ErrNoImage = errors.New("packager produced no image")

// report logs each image the packager left behind. Having none is an error
// attributed to the packager invocation.
func (d *Driver) report(pkgArgs []string) error {
	found := 0
	for _, img := range []struct{ mode, path string }{
		{"bios", d.Layout.BiosImagePath()},
		{"uefi", d.Layout.UefiImagePath()},
	} {
		fi, err := os.Stat(img.path)
		if os.IsNotExist(err) {
			log.Logf("no %s image at %s", img.mode, img.path)
			continue
		}
		if err != nil {
			return errs.Fs("stat", img.path, err)
		}
		found++
		log.Msgf("%s image: %s (%d bytes, %s)", img.mode, img.path, fi.Size(), fi.ModTime().Format(log.TimestampLayout))
	}
	if found == 0 {
		return errs.Exec(pkgArgs, fmt.Errorf("%w at %s or %s", ErrNoImage, d.Layout.BiosImagePath(), d.Layout.UefiImagePath()), "")
	}
	return nil
}

func (d *Driver) cargo(ctx context.Context, args ...string) error {
	return d.Runner.Run(ctx, d.Toolchain.Cargo, args...)
}

// targetArgs selects the triple and profile; the artifact path depends on both.
func (d *Driver) targetArgs() []string {
	args := []string{"--target", d.Layout.Triple}
	switch {
	case d.Layout.Profile == paths.DefaultProfile:
	case d.Layout.Release():
		args = append(args, "--release")
	default:
		args = append(args, "--profile", d.Layout.Profile)
	}
	return args
}
