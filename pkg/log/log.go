// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package log is a stackable logging mechanism with one or more sinks: the
// console, a JSON file, memory, or a test harness.
//
// Events are retained in memory until the memory log is flushed, so a sink
// added later still sees everything logged before it was attached.
package log

import "github.com/purecloudlabs/osboot/pkg/log/flags"

// Msgf is for short status lines the person at the terminal should read, such
// as "building kernel" or "launching qemu (uefi)".
func Msgf(f string, va ...interface{}) { FlaggedLogf(flags.EndUser, f, va...) }

// Logf is for technical detail: command lines, paths checked, timestamps
// compared.
func Logf(f string, va ...interface{}) { FlaggedLogf(flags.NA, f, va...) }
