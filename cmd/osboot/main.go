// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Command osboot builds the kernel, packages it into BIOS and UEFI disk
// images, and boots those images in qemu.
//
//	osboot [flags] setup|build|image|image-verbose
//	osboot [flags] run|boot [bios|uefi]
//	osboot [flags] run-uefi|run-bios
//
// The run commands build and package first; boot only launches an image that
// already exists.
//
// The project root is found by searching upward for osboot.toml or
// Cargo.toml, unless given with -C or $OSBOOT_ROOT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	fp "path/filepath"
	"sort"

	"github.com/purecloudlabs/osboot/build/paths"
	"github.com/purecloudlabs/osboot/pkg/config"
	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/kbuild"
	"github.com/purecloudlabs/osboot/pkg/launch"
	"github.com/purecloudlabs/osboot/pkg/log"
	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

var buildId string

type app struct {
	cfg     *config.Config
	verbose bool
	dryRun  bool
	stdout  io.Writer
	stderr  io.Writer
}

// driver streams toolchain output, when verbose, to the writers run was given.
func (a *app) driver(verbose bool) *kbuild.Driver {
	d := kbuild.New(a.cfg, verbose)
	d.Runner.Stdout = a.stdout
	d.Runner.Stderr = a.stderr
	return d
}

type command struct {
	help string
	// accepts one optional argument
	optArg bool
	run    func(ctx context.Context, a *app, arg string) error
}

var commands = map[string]command{
	"setup": {help: "install toolchain components and the target", run: func(ctx context.Context, a *app, _ string) error {
		return a.driver(a.verbose).Setup(ctx)
	}},
	"build": {help: "compile the kernel", run: func(ctx context.Context, a *app, _ string) error {
		return a.driver(a.verbose).Kernel(ctx)
	}},
	"image": {help: "compile the kernel and package disk images", run: func(ctx context.Context, a *app, _ string) error {
		return a.driver(a.verbose).Image(ctx)
	}},
	"image-verbose": {help: "image, streaming toolchain output", run: func(ctx context.Context, a *app, _ string) error {
		return a.driver(true).Image(ctx)
	}},
	"run": {help: "image, then boot it; mode is bios or uefi (default)", optArg: true, run: buildAndBoot},
	"run-uefi": {help: "image, then boot the UEFI image", run: func(ctx context.Context, a *app, _ string) error {
		return buildAndBoot(ctx, a, string(launch.UEFI))
	}},
	"run-bios": {help: "image, then boot the BIOS image", run: func(ctx context.Context, a *app, _ string) error {
		return buildAndBoot(ctx, a, string(launch.BIOS))
	}},
	"boot": {help: "boot the existing image without building; mode as for run", optArg: true, run: boot},
}

// The mode is checked before anything is built.
func buildAndBoot(ctx context.Context, a *app, mode string) error {
	if _, err := launch.ParseMode(mode); err != nil {
		return err
	}
	if err := a.driver(a.verbose).Image(ctx); err != nil {
		return err
	}
	return boot(ctx, a, mode)
}

func boot(ctx context.Context, a *app, mode string) error {
	spec, err := launch.NewConfigurator(a.cfg).Prepare(mode)
	if err != nil {
		return err
	}
	return launch.Launcher{DryRun: a.dryRun, Out: a.stdout}.Launch(ctx, spec)
}

func main() { os.Exit(osboot()) }

func osboot() int { return run(os.Args[1:], os.Stdout, os.Stderr) }

// run returns the process exit status.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("osboot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	a := &app{stdout: stdout, stderr: stderr}
	var root, cfgFile, logFile string
	var ver bool
	fs.StringVar(&root, "C", "", "project root")
	fs.StringVar(&cfgFile, "config", "", "configuration file (default <root>/"+config.FileName+")")
	fs.BoolVar(&a.verbose, "v", false, "show toolchain output and technical log messages")
	fs.BoolVar(&a.dryRun, "n", false, "print the emulator command instead of running it")
	fs.StringVar(&logFile, "log", "", "also write a JSON log to this file")
	fs.BoolVar(&ver, "version", false, "print version and exit")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return errs.StatusConfig
	}
	if ver {
		fmt.Fprintf(stdout, "build %s\n", buildId)
		return 0
	}
	if fs.NArg() == 0 {
		usage(fs)
		return errs.StatusConfig
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		usage(fs)
		return errs.StatusConfig
	}
	var arg string
	switch {
	case fs.NArg() == 2 && cmd.optArg:
		arg = fs.Arg(1)
	case fs.NArg() > 1:
		fmt.Fprintf(stderr, "too many arguments for %s\n", name)
		return errs.StatusConfig
	}

	log.DefaultLogStack()
	if a.verbose {
		log.AddConsoleWriter(stderr, flags.NA)
	} else {
		log.AddConsoleWriter(stderr, flags.EndUser)
	}
	log.SetFatalAction(log.FailAction{MsgPfx: "osboot: ", Terminator: func() {}})

	err := setup(a, root, cfgFile, logFile)
	if err == nil {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		log.Logf("%s: %s", name, a.cfg)
		err = cmd.run(ctx, a, arg)
	}
	if err != nil {
		log.Fatalf("%s", err)
		return errs.ExitCode(err)
	}
	log.Finalize()
	return 0
}

func setup(a *app, root, cfgFile, logFile string) (err error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if root, err = paths.FindRoot(wd); err != nil {
			return errs.Config("", "%s", err)
		}
	} else if root, err = fp.Abs(root); err != nil {
		return err
	}
	if a.cfg, err = config.Load(root, cfgFile); err != nil {
		return err
	}
	if logFile == "" {
		logFile = a.cfg.LogFile
	}
	if logFile != "" {
		if err = log.AddJSONFileLog(logFile); err != nil {
			return errs.Fs("open log", logFile, err)
		}
	}
	return nil
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "usage: osboot [flags] <command> [mode]\n\ncommands:\n")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %-14s %s\n", n, commands[n].help)
	}
	fmt.Fprintf(w, "\nflags:\n")
	fs.PrintDefaults()
}
