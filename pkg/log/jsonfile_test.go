// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log_test

import (
	"bufio"
	"encoding/json"
	"os"
	fp "path/filepath"
	"testing"
	"time"

	"github.com/purecloudlabs/osboot/pkg/log"
	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

func TestJSONFileLog(t *testing.T) {
	log.DefaultLogStack()
	defer log.DefaultLogStack()
	T, err := time.Parse("2006", "1999")
	if err != nil {
		t.Fatal(err)
	}
	stack := log.Stack()
	stack.AddEntry(log.LogEntry{Time: T, Msg: "building %s", Args: []interface{}{"os"}, Flags: flags.EndUser})
	//subprocess output already on the terminal; keep it out of the file
	stack.AddEntry(log.LogEntry{Time: T, Msg: "noisy output", Flags: flags.NotFile})

	fname := fp.Join(t.TempDir(), "osboot.json")
	if err = log.AddJSONFileLog(fname); err != nil {
		t.Fatal(err)
	}
	log.Logf("after %d", 1)
	log.Finalize()

	f, err := os.Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m := make(map[string]interface{})
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("line %q: %s", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0]["message"] != "building os" || lines[0]["user"] != true {
		t.Errorf("first entry: %v", lines[0])
	}
	if lines[0]["t"] != "1999-01-01T00:00:00Z" {
		t.Errorf("first entry time: %v", lines[0]["t"])
	}
	if lines[1]["message"] != "after 1" || lines[1]["user"] != false {
		t.Errorf("second entry: %v", lines[1])
	}
}
