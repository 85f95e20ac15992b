// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package paths describes where things live in the OS project: the kernel
// build unit, its layout descriptor, the packager unit and the disk images.
//
// A Layout is a plain value handed to each component. Nothing here changes
// the process's working directory; subprocesses get Root as their Dir.
package paths

import (
	fp "path/filepath"
)

// Defaults matching the project's cargo workspace.
const (
	DefaultTriple       = "x86_64-unknown-none"
	DefaultProfile      = "debug"
	DefaultKernelUnit   = "os"
	DefaultPackagerUnit = "boot"
	DefaultLinkerScript = "os/linker.ld"
	DefaultBiosImage    = "os.img"
	DefaultUefiImage    = "os-uefi.img"
)

type Layout struct {
	// project root; relative paths below resolve against it
	Root string

	// target triple the kernel is compiled for
	Triple string
	// cargo profile: debug or release
	Profile string

	// cargo package names
	KernelUnit, PackagerUnit string

	// layout descriptor the toolchain does not track as a dependency
	LinkerScript string

	// disk images produced by the packager, one per boot mode
	BiosImage, UefiImage string
}

// Default returns the conventional layout rooted at root.
func Default(root string) Layout {
	return Layout{
		Root:         root,
		Triple:       DefaultTriple,
		Profile:      DefaultProfile,
		KernelUnit:   DefaultKernelUnit,
		PackagerUnit: DefaultPackagerUnit,
		LinkerScript: DefaultLinkerScript,
		BiosImage:    DefaultBiosImage,
		UefiImage:    DefaultUefiImage,
	}
}

// Abs resolves p against Root unless it is already absolute.
func (l Layout) Abs(p string) string {
	if fp.IsAbs(p) {
		return p
	}
	return fp.Join(l.Root, p)
}

// TargetDir is cargo's output dir for the kernel's triple and profile.
func (l Layout) TargetDir() string {
	return fp.Join(l.Root, "target", l.Triple, l.Profile)
}

// KernelArtifact is the compiled kernel. Determined entirely by triple,
// profile and unit name.
func (l Layout) KernelArtifact() string {
	return fp.Join(l.TargetDir(), l.KernelUnit)
}

func (l Layout) LayoutDescriptor() string { return l.Abs(l.LinkerScript) }
func (l Layout) BiosImagePath() string    { return l.Abs(l.BiosImage) }
func (l Layout) UefiImagePath() string    { return l.Abs(l.UefiImage) }

// Release reports whether the kernel is built with --release.
func (l Layout) Release() bool { return l.Profile == "release" }
