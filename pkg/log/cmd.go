// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"os/exec"

	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

// CommandFunc runs cmd to completion. When cmd has neither Stdout nor Stderr
// set, its combined output is captured and returned; otherwise output goes
// where cmd points it and res is empty.
type CommandFunc func(cmd *exec.Cmd) (res string, err error)

// Every subprocess goes through Cmd, so that tests can record or replay
// executions via testlog.
var Cmd CommandFunc = DefaultCmd

// Default impl of Cmd(); logs the command, and on failure its error and any
// captured output.
func DefaultCmd(cmd *exec.Cmd) (string, error) {
	Logf("Running %v...", cmd.Args)
	if cmd.Stdout != nil || cmd.Stderr != nil {
		err := cmd.Run()
		if err != nil {
			Logf("Running %v: error %s", cmd.Args, err)
		}
		return "", err
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		FlaggedLogf(flags.NotFile, "Running %v: error %s\noutput:\n%s", cmd.Args, err, string(out))
	}
	return string(out), err
}
