// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package main

import (
	"bytes"
	"os"
	fp "path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/purecloudlabs/osboot/pkg/log"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"osboot": osboot,
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(e *testscript.Env) error {
			e.Setenv("OSBOOT_QEMU", "")
			e.Setenv("OSBOOT_QEMU_ARGS", "")
			e.Setenv("OSBOOT_ROOT", "")
			return nil
		},
	})
}

func project(t *testing.T, toml string, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(fp.Join(dir, "osboot.toml"), []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		p := fp.Join(dir, f)
		if err := os.MkdirAll(fp.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(f), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestExitStatus(t *testing.T) {
	t.Cleanup(func() {
		log.DefaultLogStack()
		log.SetFatalAction(log.DefaultFatal)
	})
	t.Setenv("OSBOOT_QEMU", "")
	t.Setenv("OSBOOT_QEMU_ARGS", "")
	noFw := "[firmware]\ncode = [\"fw/code.fd\"]\nvars = [\"fw/vars.fd\"]\nscratch = \"vars.fd\"\n"
	for _, td := range []struct {
		name   string
		args   []string
		toml   string
		files  []string
		status int
		errMsg string
	}{
		{name: "no command", status: 2, errMsg: "usage"},
		{name: "unknown command", args: []string{"launch"}, status: 2, errMsg: `unknown command "launch"`},
		{name: "extra arg", args: []string{"build", "now"}, status: 2, errMsg: "too many arguments"},
		{name: "bad flag", args: []string{"-q", "build"}, status: 2},
		{name: "unknown mode", args: []string{"run", "UEFI"}, status: 2, errMsg: `unknown mode "UEFI"`},
		{name: "unknown boot mode", args: []string{"boot", "xyz"}, status: 2, errMsg: `unknown mode "xyz"`},
		{name: "missing image", args: []string{"boot", "bios"}, status: 2, errMsg: "run `osboot image` first"},
		{name: "missing firmware", args: []string{"boot"}, toml: noFw, files: []string{"os-uefi.img"}, status: 2, errMsg: "UEFI firmware not found"},
		{name: "bad config", args: []string{"build"}, toml: "[qemu]\nmemroy = \"1G\"\n", status: 2, errMsg: "unknown keys qemu.memroy"},
		{name: "dry run", args: []string{"-n", "boot", "bios"}, files: []string{"os.img"}, status: 0},
	} {
		t.Run(td.name, func(t *testing.T) {
			dir := project(t, td.toml, td.files...)
			var out, errw bytes.Buffer
			args := td.args
			if len(args) > 0 {
				args = append([]string{"-C", dir}, args...)
			}
			got := run(args, &out, &errw)
			if got != td.status {
				t.Errorf("want status %d, got %d", td.status, got)
			}
			if td.status == 0 && !strings.Contains(out.String(), "format=raw,file="+fp.Join(dir, "os.img")) {
				t.Errorf("unexpected output %q", out.String())
			}
			if td.errMsg != "" && !strings.Contains(errw.String(), td.errMsg) {
				t.Errorf("%q not reported; stderr:\n%s", td.errMsg, errw.String())
			}
		})
	}
}

// The toolchain's exit status becomes ours.
func TestSubprocessStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a posix shell")
	}
	t.Cleanup(func() {
		log.DefaultLogStack()
		log.SetFatalAction(log.DefaultFatal)
	})
	//sh cannot open its script argument "build": 127
	dir := project(t, "[build]\ncargo = \"sh\"\n", "os/linker.ld")
	var out, errw bytes.Buffer
	if got := run([]string{"-C", dir, "build"}, &out, &errw); got != 127 {
		t.Errorf("want 127, got %d", got)
	}
}

// With -v, toolchain output goes to the writers run was handed.
func TestVerboseOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs echo")
	}
	t.Cleanup(func() {
		log.DefaultLogStack()
		log.SetFatalAction(log.DefaultFatal)
	})
	dir := project(t, "[build]\ncargo = \"echo\"\n", "os/linker.ld")
	for _, td := range []struct {
		args []string
		want string
	}{
		{args: []string{"-v", "build"}, want: "build -p os --target x86_64-unknown-none"},
		{args: []string{"build"}, want: ""},
	} {
		var out, errw bytes.Buffer
		if got := run(append([]string{"-C", dir}, td.args...), &out, &errw); got != 0 {
			t.Fatalf("%v: exit %d; stderr:\n%s", td.args, got, errw.String())
		}
		if got := strings.TrimSpace(out.String()); got != td.want {
			t.Errorf("%v: want stdout %q, got %q", td.args, td.want, got)
		}
	}
}
