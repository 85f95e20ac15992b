// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//go:build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

/* Env vars
RUN - passed to go test -run. Only tests that match the given regex will run.
    Overridden in some cases.
COUNT - passed to go test -count. Use 1 to bypass test result caching, and
    higher values to repeat tests.
RUN and COUNT are used in testArgs() function.
*/

type Tests mg.Namespace

type junitKey struct{}

//runs unit tests
func (Tests) Unit(ctx context.Context) error {
	args, err := testArgs(ctx, nil, "")
	if err != nil {
		return err
	}
	return gotest(ctx, args...)
}

//runs the command-line scripts under cmd/osboot/testdata/script
func (Tests) Scripts(ctx context.Context) error {
	args, err := testArgs(ctx, []string{"./cmd/osboot/"}, "TestScripts")
	if err != nil {
		return err
	}
	return gotest(ctx, args...)
}

//args for 'go test': -timeout, pkgs, -run, -count
func testArgs(ctx context.Context, pkgs []string, onlyRun string) ([]string, error) {
	if len(pkgs) == 0 {
		pkgs = []string{"./..."}
	}
	args := []string{}
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		dur := time.Until(deadline) - 20*time.Second //less time than the exact deadline so go test can print out message about what test it's on
		if dur < 0 {
			return nil, mg.Fatal(1, "deadline exceeded")
		}
		args = append(args, "-timeout", dur.String())
	}
	args = append(args, pkgs...)

	//limit tests to be run
	if onlyRun != "" {
		args = append(args, "-run", onlyRun)
	} else if run := os.Getenv("RUN"); run != "" {
		args = append(args, "-run", run)
	}

	//run test(s) multiple times
	if count := os.Getenv("COUNT"); count != "" {
		c, err := strconv.Atoi(count)
		if err != nil {
			return nil, mg.Fatalf(3, "COUNT must be unset or numeric: %s", err)
		}
		if c > 0 {
			args = append(args, "-count", count)
		}
	}
	return args, nil
}

func gotest(ctx context.Context, args ...string) error {
	//if set, run gotestsum and write a junit report to the named file
	if jout, ok := ctx.Value(junitKey{}).(string); ok {
		if _, err := exec.LookPath("gotestsum"); err == nil {
			gargs := append([]string{"--junitfile", jout, "--"}, args...)
			if err = sh.RunV("gotestsum", gargs...); err != nil {
				return mg.Fatal(4, "gotestsum:", err)
			}
			return nil
		}
		fmt.Println("gotestsum not found, no junit report will be written")
	}
	if err := sh.RunV("go", append([]string{"test"}, args...)...); err != nil {
		return mg.Fatal(5, "go test error:", err)
	}
	fmt.Println("'go test' passes")
	return nil
}

//go vet, plus golangci-lint if present
func (Tests) Lint(ctx context.Context) error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return mg.Fatal(6, "go vet:", err)
	}
	lp, err := exec.LookPath("golangci-lint")
	if err != nil {
		fmt.Println("golangci-lint not present, skipping")
		return nil
	}
	args := []string{"run"}
	if deadline, ok := ctx.Deadline(); ok {
		dur := time.Until(deadline) - 20*time.Second
		if dur < 0 {
			return mg.Fatal(8, "deadline exceeded")
		}
		args = append(args, "--timeout", dur.String())
	}
	args = append(args, "./...")
	if err = sh.RunV(lp, args...); err != nil {
		return mg.Fatal(9, "golangci-lint:", err)
	}
	fmt.Println("golangci-lint: success")
	return nil
}
