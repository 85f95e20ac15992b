// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package errs

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/magefile/mage/mg"
)

func TestExitCode(t *testing.T) {
	exitErr := exec.Command("sh", "-c", "exit 7").Run()
	if exitErr == nil {
		t.Fatal("expected sh to fail")
	}
	for _, td := range []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "config", err: Config("run osboot image", "image %s not found", "os.img"), want: StatusConfig},
		{name: "wrapped config", err: fmt.Errorf("launch: %w", Config("", "unknown mode")), want: StatusConfig},
		{name: "exec status", err: Exec([]string{"sh", "-c", "exit 7"}, exitErr, ""), want: 7},
		{name: "exec not found", err: Exec([]string{"nosuchcmd"}, exec.ErrNotFound, ""), want: StatusFailure},
		{name: "fs", err: Fs("stat", "/x", os.ErrPermission), want: StatusFailure},
		{name: "plain", err: errors.New("boom"), want: StatusFailure},
	} {
		t.Run(td.name, func(t *testing.T) {
			got := ExitCode(td.err)
			if got != td.want {
				t.Errorf("want %d, got %d", td.want, got)
			}
			if td.err != nil && mg.ExitStatus(td.err) != td.want && td.name != "wrapped config" {
				//mage does not unwrap; only direct values are expected to agree
				t.Errorf("mage disagrees: %d", mg.ExitStatus(td.err))
			}
		})
	}
}

func TestMessages(t *testing.T) {
	ce := Config("run `osboot image` first", "disk image %s does not exist", "/p/os.img")
	want := "disk image /p/os.img does not exist\nhint: run `osboot image` first"
	if ce.Error() != want {
		t.Errorf("want %q, got %q", want, ce.Error())
	}
	ee := Exec([]string{"cargo", "build"}, errors.New("exit status 101"), "error[E0425]\n")
	if !strings.Contains(ee.Error(), "running cargo build: exit status 101\noutput:\nerror[E0425]") {
		t.Errorf("unexpected %q", ee.Error())
	}
	if Exec(nil, nil, "out") != nil || Fs("stat", "x", nil) != nil {
		t.Error("nil error must stay nil")
	}
	if !errors.Is(Fs("remove", "/a", os.ErrPermission), os.ErrPermission) {
		t.Error("FsError must unwrap")
	}
	if !IsConfig(fmt.Errorf("x: %w", ce)) || IsConfig(ee) {
		t.Error("IsConfig misclassifies")
	}
}
