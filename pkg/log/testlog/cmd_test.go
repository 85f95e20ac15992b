// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package testlog

import (
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/purecloudlabs/osboot/pkg/log"
)

func TestUseMappedCmdHijacker(t *testing.T) {
	m := make(CmdMap)
	tlog := NewTestLog(t, true, false)
	tlog.UseMappedCmdHijacker(m)
	tru := exec.Command("true")
	res, err := log.Cmd(tru)
	if err != nil {
		t.Log(res)
		t.Log(tlog.String())
		t.Errorf("failed: %s", err)
	}
	if len(m) != 1 {
		t.Errorf("bad len - %#v", m)
	}
	if m[CmdKey(tru.Args...)].RunCount != 1 {
		t.Errorf("bad count - %#v", m)
	}

	bogus := errors.New("exit status 3")
	var effects int
	b := exec.Command("cargo", "build", "-p", "os")
	bkey := CmdKey(b.Args...)
	m[bkey] = HijackerData{
		Result: Result{Res: "fake output", Err: bogus},
		NoRun:  true,
		Effect: func() { effects++ },
	}
	res, err = log.Cmd(b)
	if err != bogus || res != "fake output" {
		t.Errorf("%v: returning stored result failed - %v %s", b.Args, err, res)
	}
	log.Cmd(exec.Command("cargo", "build", "-p", "os"))
	if m[bkey].RunCount != 2 || effects != 2 {
		t.Errorf("want 2 runs and 2 effects, got %d %d", m[bkey].RunCount, effects)
	}
	want := []Key{CmdKey("true"), bkey, bkey}
	if len(tlog.CmdLog) != len(want) {
		t.Fatalf("want %v, got %v", want, tlog.CmdLog)
	}
	for i := range want {
		if tlog.CmdLog[i] != want[i] {
			t.Errorf("%d: want %s, got %s", i, want[i], tlog.CmdLog[i])
		}
	}
	if !strings.Contains(tlog.String(), "LOG:Running [cargo build -p os]...") {
		t.Errorf("missing log line:\n%s", tlog.String())
	}
}
