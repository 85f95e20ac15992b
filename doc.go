// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package osboot builds and boots a bare-metal kernel image.
//
// The kernel is compiled for a freestanding target by the cargo toolchain,
// then a packager turns it into two disk images, one booted through legacy
// BIOS and one through UEFI. Both are run headless under qemu with the
// guest's serial port on the terminal.
//
// Subpackages:
//
//    - pkg/freshness: decides whether the kernel artifact predates its linker
//      script, which the toolchain does not track, and discards it if so.
//    - pkg/kbuild: toolchain setup, kernel compilation and image packaging.
//      Packaging always runs; the packager cannot see kernel changes itself.
//    - pkg/firmware: locates OVMF code and variables images and keeps a
//      per-run writable copy of the variables store.
//    - pkg/launch: boot mode selection and qemu command assembly.
//    - pkg/config, build/paths: project layout and osboot.toml.
//
// cmd/osboot exposes setup, build, image, image-verbose, run, run-uefi and
// run-bios. The same targets exist for mage, under build/.
//
package osboot
