// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//go:build mage

/*
 build file for mage build system
 list tgts with
go run magerunner.go -d . -w .. -l

 build tgt with
go run magerunner.go -d . -w .. tgt

 Env vars
OSBOOT_CONFIG - configuration file, instead of osboot.toml in the project root.
DRYRUN - if non-empty, run targets print the qemu command instead of running it.
Run with mage -v to see toolchain output.
*/

package main

import (
	"context"
	"os"

	"github.com/magefile/mage/mg"

	"github.com/purecloudlabs/osboot/build/paths"
	"github.com/purecloudlabs/osboot/pkg/config"
	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/kbuild"
	"github.com/purecloudlabs/osboot/pkg/launch"
	"github.com/purecloudlabs/osboot/pkg/log"
	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

var Default = Build

//install toolchain components and the kernel's target
func Setup(ctx context.Context) error {
	cfg, err := project(ctx)
	if err != nil {
		return err
	}
	return kbuild.New(cfg, mg.Verbose()).Setup(ctx)
}

//compile the kernel, discarding it first if the linker script changed
func Build(ctx context.Context) error {
	cfg, err := project(ctx)
	if err != nil {
		return err
	}
	return kbuild.New(cfg, mg.Verbose()).Kernel(ctx)
}

//build the kernel and package bios and uefi disk images
func Image(ctx context.Context) error {
	cfg, err := project(ctx)
	if err != nil {
		return err
	}
	return kbuild.New(cfg, mg.Verbose()).Image(ctx)
}

//like image, always showing toolchain output
func ImageVerbose(ctx context.Context) error {
	cfg, err := project(ctx)
	if err != nil {
		return err
	}
	return kbuild.New(cfg, true).Image(ctx)
}

//image, then boot the uefi image
func Run(ctx context.Context) error { return RunUefi(ctx) }

//image, then boot the uefi image
func RunUefi(ctx context.Context) error {
	mg.CtxDeps(ctx, Image)
	return boot(ctx, launch.UEFI)
}

//image, then boot the bios image
func RunBios(ctx context.Context) error {
	mg.CtxDeps(ctx, Image)
	return boot(ctx, launch.BIOS)
}

//boot existing images without building
type Boot mg.Namespace

func (Boot) Uefi(ctx context.Context) error { return boot(ctx, launch.UEFI) }

func (Boot) Bios(ctx context.Context) error { return boot(ctx, launch.BIOS) }

func boot(ctx context.Context, m launch.Mode) error {
	cfg, err := project(ctx)
	if err != nil {
		return err
	}
	spec, err := launch.NewConfigurator(cfg).Prepare(string(m))
	if err != nil {
		return err
	}
	return launch.Launcher{DryRun: os.Getenv("DRYRUN") != ""}.Launch(ctx, spec)
}

//load configuration for the project containing the working dir
func project(ctx context.Context) (*config.Config, error) {
	mg.CtxDeps(ctx, logging)
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := paths.FindRoot(wd)
	if err != nil {
		return nil, errs.Config("run mage with -w <project root>", "%s", err)
	}
	return config.Load(root, os.Getenv("OSBOOT_CONFIG"))
}

//console output for the packages' log messages; everything with -v
func logging() {
	if mg.Verbose() {
		log.AddConsoleLog(flags.NA)
	} else {
		log.AddConsoleLog(flags.EndUser)
	}
}
