// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//go:build !unix

package launch

import (
	"context"

	"github.com/purecloudlabs/osboot/pkg/runner"
)

// No exec(2) here: run the emulator as a child sharing our stdio. Its exit
// status comes back inside the returned error.
func replace(ctx context.Context, bin string, argv []string) error {
	return runner.Runner{}.Attach(ctx, bin, argv[1:]...)
}
