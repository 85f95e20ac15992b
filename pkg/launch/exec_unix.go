// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//go:build unix

package launch

import (
	"context"
	"os"

	"golang.org/x/sys/unix"

	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/log"
)

// replace execs the emulator in place of this process; stdio and the
// controlling terminal carry over unchanged.
func replace(_ context.Context, bin string, argv []string) error {
	log.Finalize()
	err := unix.Exec(bin, argv, os.Environ())
	return errs.Exec(argv, err, "")
}
