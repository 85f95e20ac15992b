// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package launch

import (
	"github.com/purecloudlabs/osboot/pkg/errs"
)

// Mode is the firmware interface the emulator presents to the image.
type Mode string

const (
	BIOS Mode = "bios"
	UEFI Mode = "uefi"
)

// DefaultMode applies when no mode is given.
const DefaultMode = UEFI

// ParseMode matches s exactly against "bios" and "uefi"; "" means
// DefaultMode. Case matters: "UEFI" is an unknown mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return DefaultMode, nil
	case BIOS, UEFI:
		return Mode(s), nil
	}
	return "", errs.Config("use one of: bios, uefi", "unknown mode %q", s)
}
