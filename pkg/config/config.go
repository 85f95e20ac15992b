// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package config assembles the settings for one osboot invocation: built-in
// defaults, then osboot.toml at the project root (or a file named with
// -config), then environment overrides.
package config

import (
	"fmt"
	"os"
	fp "path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/shlex"

	"github.com/purecloudlabs/osboot/build/paths"
	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/firmware"
)

// Name of the optional per-project config file.
const FileName = "osboot.toml"

// Environment overrides.
const (
	QemuEnv     = "OSBOOT_QEMU"      //emulator binary
	QemuArgsEnv = "OSBOOT_QEMU_ARGS" //extra emulator args, shell-quoted
)

type Config struct {
	Layout    paths.Layout
	Toolchain Toolchain
	Qemu      Qemu
	Firmware  Firmware
	// JSON log destination; empty for none.
	LogFile string
}

type Toolchain struct {
	Cargo, Rustup string
	// installed by setup
	Components []string
	// appended to the kernel and packager cargo builds
	KernelArgs, PackagerArgs []string
}

type Qemu struct {
	Binary  string
	Memory  string
	CPU     string
	Machine string
	Extra   []string
}

type Firmware struct {
	Code, Vars firmware.Candidates
	// writable copy of the variables template
	Scratch string
}

func Default(root string) *Config {
	return &Config{
		Layout: paths.Default(root),
		Toolchain: Toolchain{
			Cargo:      "cargo",
			Rustup:     "rustup",
			Components: []string{"rust-src", "llvm-tools-preview"},
		},
		Qemu: Qemu{
			Binary:  "qemu-system-x86_64",
			Memory:  "512M",
			CPU:     "qemu64",
			Machine: "q35",
		},
		Firmware: Firmware{
			Code:    firmware.DefaultCode,
			Vars:    firmware.DefaultVars,
			Scratch: firmware.DefaultScratch(),
		},
	}
}

// Mirrors the layout of osboot.toml.
type fileConfig struct {
	Build struct {
		Target       string   `toml:"target"`
		Profile      string   `toml:"profile"`
		KernelUnit   string   `toml:"kernel_unit"`
		PackagerUnit string   `toml:"packager_unit"`
		LinkerScript string   `toml:"linker_script"`
		Cargo        string   `toml:"cargo"`
		Rustup       string   `toml:"rustup"`
		Components   []string `toml:"components"`
		KernelArgs   string   `toml:"kernel_args"`
		PackagerArgs string   `toml:"packager_args"`
	} `toml:"build"`
	Images struct {
		Bios string `toml:"bios"`
		Uefi string `toml:"uefi"`
	} `toml:"images"`
	Qemu struct {
		Binary    string `toml:"binary"`
		Memory    string `toml:"memory"`
		CPU       string `toml:"cpu"`
		Machine   string `toml:"machine"`
		ExtraArgs string `toml:"extra_args"`
	} `toml:"qemu"`
	Firmware struct {
		Code    []string `toml:"code"`
		Vars    []string `toml:"vars"`
		Scratch string   `toml:"scratch"`
	} `toml:"firmware"`
	Log struct {
		File string `toml:"file"`
	} `toml:"log"`
}

// Load returns the configuration for the project at root. If file is empty,
// root/osboot.toml is used when present; a file named explicitly must exist.
func Load(root, file string) (*Config, error) {
	cfg := Default(root)
	explicit := file != ""
	if !explicit {
		file = fp.Join(root, FileName)
	}
	if _, err := os.Stat(file); err == nil || explicit {
		if err := cfg.overlay(file); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) overlay(file string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(file, &raw)
	if err != nil {
		return errs.Config("fix or remove "+file, "config %s: %s", file, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		keys := make([]string, 0, len(undec))
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		return errs.Config("remove or rename them", "config %s: unknown keys %s", file, strings.Join(keys, ", "))
	}

	str := func(dst *string, val string, key ...string) {
		if meta.IsDefined(key...) {
			*dst = strings.TrimSpace(val)
		}
	}
	l := &cfg.Layout
	str(&l.Triple, raw.Build.Target, "build", "target")
	str(&l.Profile, raw.Build.Profile, "build", "profile")
	str(&l.KernelUnit, raw.Build.KernelUnit, "build", "kernel_unit")
	str(&l.PackagerUnit, raw.Build.PackagerUnit, "build", "packager_unit")
	str(&l.LinkerScript, raw.Build.LinkerScript, "build", "linker_script")
	str(&l.BiosImage, raw.Images.Bios, "images", "bios")
	str(&l.UefiImage, raw.Images.Uefi, "images", "uefi")

	tc := &cfg.Toolchain
	str(&tc.Cargo, raw.Build.Cargo, "build", "cargo")
	str(&tc.Rustup, raw.Build.Rustup, "build", "rustup")
	if meta.IsDefined("build", "components") {
		tc.Components = raw.Build.Components
	}
	if tc.KernelArgs, err = splitIf(meta, raw.Build.KernelArgs, tc.KernelArgs, "build", "kernel_args"); err != nil {
		return err
	}
	if tc.PackagerArgs, err = splitIf(meta, raw.Build.PackagerArgs, tc.PackagerArgs, "build", "packager_args"); err != nil {
		return err
	}

	q := &cfg.Qemu
	str(&q.Binary, raw.Qemu.Binary, "qemu", "binary")
	str(&q.Memory, raw.Qemu.Memory, "qemu", "memory")
	str(&q.CPU, raw.Qemu.CPU, "qemu", "cpu")
	str(&q.Machine, raw.Qemu.Machine, "qemu", "machine")
	if q.Extra, err = splitIf(meta, raw.Qemu.ExtraArgs, q.Extra, "qemu", "extra_args"); err != nil {
		return err
	}

	fw := &cfg.Firmware
	if meta.IsDefined("firmware", "code") {
		fw.Code = firmware.Candidates(raw.Firmware.Code)
	}
	if meta.IsDefined("firmware", "vars") {
		fw.Vars = firmware.Candidates(raw.Firmware.Vars)
	}
	str(&fw.Scratch, raw.Firmware.Scratch, "firmware", "scratch")
	str(&cfg.LogFile, raw.Log.File, "log", "file")
	return nil
}

func splitIf(meta toml.MetaData, val string, cur []string, key ...string) ([]string, error) {
	if !meta.IsDefined(key...) {
		return cur, nil
	}
	args, err := shlex.Split(val)
	if err != nil {
		return nil, errs.Config("", "config key %s: %s", strings.Join(key, "."), err)
	}
	return args, nil
}

func (cfg *Config) applyEnv() error {
	if bin := strings.TrimSpace(os.Getenv(QemuEnv)); bin != "" {
		cfg.Qemu.Binary = bin
	}
	if extra := os.Getenv(QemuArgsEnv); extra != "" {
		args, err := shlex.Split(extra)
		if err != nil {
			return errs.Config("", "%s: %s", QemuArgsEnv, err)
		}
		cfg.Qemu.Extra = append(cfg.Qemu.Extra, args...)
	}
	return nil
}

// relative firmware paths and log file are relative to the project root
func (cfg *Config) resolve() {
	abs := func(c firmware.Candidates) firmware.Candidates {
		out := make(firmware.Candidates, len(c))
		for i, p := range c {
			out[i] = cfg.Layout.Abs(p)
		}
		return out
	}
	cfg.Firmware.Code = abs(cfg.Firmware.Code)
	cfg.Firmware.Vars = abs(cfg.Firmware.Vars)
	cfg.Firmware.Scratch = cfg.Layout.Abs(cfg.Firmware.Scratch)
	if cfg.LogFile != "" {
		cfg.LogFile = cfg.Layout.Abs(cfg.LogFile)
	}
}

// Validate rejects settings that would only fail later, deep in a subprocess.
func (cfg *Config) Validate() error {
	for _, f := range []struct{ name, val string }{
		{"build.target", cfg.Layout.Triple},
		{"build.profile", cfg.Layout.Profile},
		{"build.kernel_unit", cfg.Layout.KernelUnit},
		{"build.packager_unit", cfg.Layout.PackagerUnit},
		{"build.linker_script", cfg.Layout.LinkerScript},
		{"build.cargo", cfg.Toolchain.Cargo},
		{"images.bios", cfg.Layout.BiosImage},
		{"images.uefi", cfg.Layout.UefiImage},
		{"qemu.binary", cfg.Qemu.Binary},
		{"qemu.memory", cfg.Qemu.Memory},
		{"firmware.scratch", cfg.Firmware.Scratch},
	} {
		if f.val == "" {
			return errs.Config("", "config: %s must not be empty", f.name)
		}
	}
	if cfg.Layout.BiosImagePath() == cfg.Layout.UefiImagePath() {
		return errs.Config("", "config: bios and uefi images must differ, both are %s", cfg.Layout.BiosImage)
	}
	for _, p := range append(append([]string{}, cfg.Firmware.Code...), cfg.Firmware.Vars...) {
		if p == cfg.Firmware.Scratch {
			return errs.Config("", "config: firmware.scratch %s is also a firmware candidate", p)
		}
	}
	return nil
}

func (cfg *Config) String() string {
	return fmt.Sprintf("root=%s target=%s profile=%s qemu=%s", cfg.Layout.Root, cfg.Layout.Triple, cfg.Layout.Profile, cfg.Qemu.Binary)
}
