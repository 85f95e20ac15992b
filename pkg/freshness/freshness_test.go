// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package freshness

import (
	"context"
	"errors"
	"os"
	fp "path/filepath"
	"testing"
	"time"

	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/log/testlog"
)

func mkfile(t *testing.T, p string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(p, []byte(fp.Base(p)), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(p, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestStale(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, td := range []struct {
		name              string
		input, artifact   time.Duration //offset from base
		noArtifact, stale bool
	}{
		{name: "input newer", input: time.Second, artifact: 0, stale: true},
		{name: "input newer by 1ms", input: time.Millisecond, artifact: 0, stale: true},
		{name: "input older", input: 0, artifact: time.Second, stale: false},
		{name: "equal", input: 0, artifact: 0, stale: false},
		{name: "no artifact", input: time.Hour, noArtifact: true, stale: false},
	} {
		t.Run(td.name, func(t *testing.T) {
			tmp := t.TempDir()
			in := fp.Join(tmp, "linker.ld")
			art := fp.Join(tmp, "os")
			mkfile(t, in, base.Add(td.input))
			if !td.noArtifact {
				mkfile(t, art, base.Add(td.artifact))
			}
			got, err := Stale(in, art)
			if err != nil {
				t.Fatal(err)
			}
			if got != td.stale {
				t.Errorf("want %t, got %t", td.stale, got)
			}
		})
	}
}

func TestMissingInputIsFatal(t *testing.T) {
	tmp := t.TempDir()
	art := fp.Join(tmp, "os")
	mkfile(t, art, time.Now())
	_, err := Stale(fp.Join(tmp, "linker.ld"), art)
	var fe *errs.FsError
	if !errors.As(err, &fe) {
		t.Errorf("want FsError, got %v", err)
	}
	//without an artifact the input is never looked at
	if _, err = Stale(fp.Join(tmp, "linker.ld"), fp.Join(tmp, "nope")); err != nil {
		t.Errorf("unexpected %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tmp := t.TempDir()
	in := fp.Join(tmp, "linker.ld")
	art := fp.Join(tmp, "os")
	var cleaned int
	c := Checker{
		Input:    in,
		Artifact: art,
		Clean:    func(context.Context) error { cleaned++; return nil },
	}

	mkfile(t, in, base)
	mkfile(t, art, base.Add(time.Minute))
	did, err := c.Invalidate(context.Background())
	if err != nil || did {
		t.Fatalf("fresh artifact invalidated: %t %v", did, err)
	}
	if _, err = os.Stat(art); err != nil || cleaned != 0 {
		t.Fatalf("fresh artifact touched: %v, %d cleans", err, cleaned)
	}

	mkfile(t, in, base.Add(time.Hour))
	did, err = c.Invalidate(context.Background())
	if err != nil || !did {
		t.Fatalf("stale artifact kept: %t %v", did, err)
	}
	if _, err = os.Stat(art); !os.IsNotExist(err) {
		t.Errorf("artifact still present: %v", err)
	}
	if cleaned != 1 {
		t.Errorf("want 1 clean, got %d", cleaned)
	}

	//clean failure propagates
	mkfile(t, art, base)
	boom := errors.New("cargo clean failed")
	c.Clean = func(context.Context) error { return boom }
	if _, err = c.Invalidate(context.Background()); err != boom {
		t.Errorf("want %v, got %v", boom, err)
	}
}

// Paths are used as given; a '$' in a directory name is not an env reference.
func TestDollarInPath(t *testing.T) {
	testlog.NewTestLog(t, true, false)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	dir := fp.Join(t.TempDir(), "proj$OSBOOT_TEST_UNSET")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	in := fp.Join(dir, "linker.ld")
	art := fp.Join(dir, "os")
	mkfile(t, in, base)
	mkfile(t, art, base.Add(time.Hour))

	stale, err := Stale(in, art)
	if err != nil || stale {
		t.Fatalf("want fresh, got %t %v", stale, err)
	}
	c := Checker{Input: in, Artifact: art}
	if did, err := c.Invalidate(context.Background()); err != nil || did {
		t.Fatalf("fresh artifact invalidated: %t %v", did, err)
	}
	if _, err = os.Stat(art); err != nil {
		t.Errorf("artifact removed: %v", err)
	}

	mkfile(t, in, base.Add(2*time.Hour))
	if stale, err = Stale(in, art); err != nil || !stale {
		t.Errorf("want stale, got %t %v", stale, err)
	}
}
