// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package errs classifies pipeline failures and maps them to exit statuses.
//
// Every type here implements ExitStatus() int, which is the interface mage's
// mg.ExitStatus and sh.ExitStatus look for, so a mage target returning one of
// these exits with the same code the osboot command would.
package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

// Exit statuses for failures that did not come from a subprocess.
const (
	StatusFailure = 1
	StatusConfig  = 2
)

// ConfigError is raised before any subprocess is spawned: unknown boot mode,
// unresolvable firmware, missing prebuilt image.
type ConfigError struct {
	Msg  string
	Hint string //remediation, may be empty
}

func Config(hint, f string, va ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(f, va...), Hint: hint}
}

func (c *ConfigError) Error() string {
	if c.Hint == "" {
		return c.Msg
	}
	return c.Msg + "\nhint: " + c.Hint
}

func (c *ConfigError) ExitStatus() int { return StatusConfig }

// ExecError is a subprocess that could not be run or exited non-zero. Output
// holds whatever was captured in quiet mode.
type ExecError struct {
	Args   []string
	Err    error
	Output string
}

func Exec(args []string, err error, out string) error {
	if err == nil {
		return nil
	}
	return &ExecError{Args: args, Err: err, Output: out}
}

func (e *ExecError) Error() string {
	str := fmt.Sprintf("running %s: %s", strings.Join(e.Args, " "), e.Err)
	if len(e.Output) > 0 {
		str += fmt.Sprintf("\noutput:\n%s", e.Output)
	}
	return str
}

func (e *ExecError) Unwrap() error { return e.Err }

// The subprocess's own status; 1 if it never ran or was killed by a signal.
func (e *ExecError) ExitStatus() int {
	code := sh.ExitStatus(e.Err)
	if code <= 0 {
		return StatusFailure
	}
	return code
}

// FsError is a permission or I/O failure on a path the pipeline depends on.
type FsError struct {
	Op   string
	Path string
	Err  error
}

func Fs(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &FsError{Op: op, Path: path, Err: err}
}

func (f *FsError) Error() string {
	return fmt.Sprintf("%s %s: %s", f.Op, f.Path, f.Err)
}

func (f *FsError) Unwrap() error { return f.Err }

func (f *FsError) ExitStatus() int { return StatusFailure }

// ExitCode returns the status the process should exit with for err; 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var es interface{ ExitStatus() int }
	if errors.As(err, &es) {
		return es.ExitStatus()
	}
	return StatusFailure
}

// IsConfig reports whether err is, or wraps, a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
