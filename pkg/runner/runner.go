// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package runner executes the external collaborators: toolchain, packager,
// and (when not replacing the process) the emulator.
package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sort"

	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/log"
)

// Runner runs commands in Dir. Quiet (the default) captures combined output
// and surfaces it only when the command fails; Verbose streams output live.
// Verbosity is a property of one invocation, never persisted.
type Runner struct {
	Dir     string
	Verbose bool
	// Added to the inherited environment.
	Env map[string]string
	// Destinations in verbose mode; os.Stdout/os.Stderr if nil.
	Stdout, Stderr io.Writer
}

// Run runs name with args and waits for it. A non-zero exit is returned as
// an *errs.ExecError carrying the subprocess status and, in quiet mode, its
// output.
func (r Runner) Run(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	if r.Verbose {
		cmd.Stdout = r.Stdout
		if cmd.Stdout == nil {
			cmd.Stdout = os.Stdout
		}
		cmd.Stderr = r.Stderr
		if cmd.Stderr == nil {
			cmd.Stderr = os.Stderr
		}
	}
	out, err := log.Cmd(cmd)
	return errs.Exec(cmd.Args, err, out)
}

// Attach runs name with the caller's stdin, stdout and stderr, as a
// supervised child. Used where the child must own the terminal.
func (r Runner) Attach(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	_, err := log.Cmd(cmd)
	return errs.Exec(cmd.Args, err, "")
}

func (r Runner) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.environ()...)
	}
	return cmd
}

// sorted so that logged command environments are stable
func (r Runner) environ() []string {
	keys := make([]string, 0, len(r.Env))
	for k := range r.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+r.Env[k])
	}
	return env
}
