// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package launch

import (
	"strings"

	"github.com/u-root/u-root/pkg/qemu"
)

// The emulator's arguments are assembled from qemu.Device values. None of
// them add kernel args; the kernel is inside the disk image.

// No graphical window; the guest's first serial port is the terminal.
type Headless struct{}

func (Headless) Cmdline() []string { return []string{"-display", "none", "-serial", "stdio"} }
func (Headless) KArgs() []string   { return nil }

// The bootable image, attached as a raw-format drive.
type RawDisk struct {
	Path string
}

func (d RawDisk) Cmdline() []string {
	return []string{"-drive", "format=raw,file=" + escapeOpt(d.Path)}
}
func (RawDisk) KArgs() []string { return nil }

// UEFI firmware as two pflash drives: code read-only, variables writable.
// Vars must be a scratch copy, never the shared template.
type UefiFw struct {
	Code, Vars string
}

func (u UefiFw) Cmdline() []string {
	return []string{
		"-drive", "if=pflash,format=raw,unit=0,readonly=on,file=" + escapeOpt(u.Code),
		"-drive", "if=pflash,format=raw,unit=1,readonly=off,file=" + escapeOpt(u.Vars),
	}
}
func (UefiFw) KArgs() []string { return nil }

var (
	_ qemu.Device = Headless{}
	_ qemu.Device = RawDisk{}
	_ qemu.Device = UefiFw{}
	_ qemu.Device = qemu.ArbitraryArgs{}
)

// qemu option values are comma separated; a literal comma is written twice.
func escapeOpt(v string) string { return strings.ReplaceAll(v, ",", ",,") }
