// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package launch turns a boot mode into a complete emulator invocation and
// runs it.
package launch

import (
	"os"

	"github.com/u-root/u-root/pkg/qemu"

	"github.com/purecloudlabs/osboot/build/paths"
	"github.com/purecloudlabs/osboot/pkg/config"
	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/firmware"
	"github.com/purecloudlabs/osboot/pkg/log"
)

// Spec is everything needed for one emulator run. Built per invocation.
type Spec struct {
	Mode   Mode
	Binary string
	// -m, -cpu, -machine
	Memory, CPU, Machine string
	Image                string
	// nil in BIOS mode. Vars is the scratch copy.
	Firmware *UefiFw
	Extra    []string
}

// Devices returns the emulator configuration in command-line order.
func (s *Spec) Devices() []qemu.Device {
	devs := []qemu.Device{
		qemu.ArbitraryArgs{"-m", s.Memory},
	}
	if s.CPU != "" {
		devs = append(devs, qemu.ArbitraryArgs{"-cpu", s.CPU})
	}
	if s.Machine != "" {
		devs = append(devs, qemu.ArbitraryArgs{"-machine", s.Machine})
	}
	devs = append(devs, Headless{}, RawDisk{Path: s.Image})
	if s.Firmware != nil {
		devs = append(devs, *s.Firmware)
	}
	if len(s.Extra) > 0 {
		devs = append(devs, qemu.ArbitraryArgs(s.Extra))
	}
	return devs
}

// Cmdline is the full argv, binary first.
func (s *Spec) Cmdline() []string {
	args := []string{s.Binary}
	for _, d := range s.Devices() {
		args = append(args, d.Cmdline()...)
	}
	return args
}

type Configurator struct {
	Layout   paths.Layout
	Qemu     config.Qemu
	Firmware firmware.Resolver
	// scratch path for the writable firmware variables
	Scratch string
}

func NewConfigurator(cfg *config.Config) *Configurator {
	return &Configurator{
		Layout:   cfg.Layout,
		Qemu:     cfg.Qemu,
		Firmware: firmware.Resolver{Code: cfg.Firmware.Code, Vars: cfg.Firmware.Vars},
		Scratch:  cfg.Firmware.Scratch,
	}
}

// ImagePath returns the disk image booted in the given mode.
func (c *Configurator) ImagePath(m Mode) string {
	if m == BIOS {
		return c.Layout.BiosImagePath()
	}
	return c.Layout.UefiImagePath()
}

// Prepare validates mode, checks the image exists and, in UEFI mode, resolves
// firmware and refreshes the scratch variables store. Nothing is looked up for an
// invalid mode, and nothing is ever built.
func (c *Configurator) Prepare(mode string) (*Spec, error) {
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	img := c.ImagePath(m)
	if _, err = os.Stat(img); err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Config("run `osboot image` first", "%s image not found at %s", m, img)
		}
		return nil, errs.Fs("stat", img, err)
	}
	spec := &Spec{
		Mode:    m,
		Binary:  c.Qemu.Binary,
		Memory:  c.Qemu.Memory,
		CPU:     c.Qemu.CPU,
		Machine: c.Qemu.Machine,
		Image:   img,
		Extra:   c.Qemu.Extra,
	}
	if m == UEFI {
		pair, err := c.Firmware.Resolve()
		if err != nil {
			return nil, err
		}
		if err = firmware.PrepareVars(pair.VarsTemplate, c.Scratch); err != nil {
			return nil, err
		}
		spec.Firmware = &UefiFw{Code: pair.Code, Vars: c.Scratch}
	}
	log.Logf("launch: %s mode, image %s", m, img)
	return spec, nil
}
