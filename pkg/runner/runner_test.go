// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package runner

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/log/testlog"
)

func TestQuietFailureSurfacesOutput(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	r := Runner{Dir: t.TempDir()}
	err := r.Run(context.Background(), "sh", "-c", "echo compile error; exit 101")
	if err == nil {
		t.Fatal("expected failure")
	}
	if errs.ExitCode(err) != 101 {
		t.Errorf("want status 101, got %d", errs.ExitCode(err))
	}
	if !strings.Contains(err.Error(), "compile error") {
		t.Errorf("output not surfaced: %s", err)
	}
}

func TestVerboseStreams(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	var out bytes.Buffer
	r := Runner{
		Dir:     t.TempDir(),
		Verbose: true,
		Env:     map[string]string{"OSBOOT_TEST_VAR": "kernel"},
		Stdout:  &out,
		Stderr:  &out,
	}
	err := r.Run(context.Background(), "sh", "-c", "echo $OSBOOT_TEST_VAR; pwd")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[0] != "kernel" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestEnviron(t *testing.T) {
	r := Runner{Env: map[string]string{"B": "2", "A": "1"}}
	got := strings.Join(r.environ(), " ")
	if got != "A=1 B=2" {
		t.Errorf("want sorted env, got %q", got)
	}
}
