// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package launch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/purecloudlabs/osboot/pkg/config"
	"github.com/purecloudlabs/osboot/pkg/errs"
	"github.com/purecloudlabs/osboot/pkg/log"
)

type Launcher struct {
	// print the command to Out instead of running it
	DryRun bool
	Out    io.Writer
}

// Launch hands the terminal to the emulator. Where the platform allows it
// the current process is replaced, so on success Launch does not return.
func (l Launcher) Launch(ctx context.Context, spec *Spec) error {
	argv := spec.Cmdline()
	log.Msgf("booting %s (%s)", spec.Image, spec.Mode)
	if l.DryRun {
		out := l.Out
		if out == nil {
			out = os.Stdout
		}
		_, err := fmt.Fprintln(out, Quote(argv))
		return err
	}
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return errs.Config("install qemu or point "+config.QemuEnv+" at it", "emulator %s not found: %s", argv[0], err)
	}
	log.Logf("exec %s", Quote(argv))
	return replace(ctx, bin, argv)
}

// Quote renders argv so that a POSIX shell would split it back identically.
func Quote(argv []string) string {
	q := make([]string, len(argv))
	for i, a := range argv {
		q[i] = quoteArg(a)
	}
	return strings.Join(q, " ")
}

func quoteArg(a string) string {
	if a == "" {
		return "''"
	}
	if strings.IndexFunc(a, needsQuote) < 0 {
		return a
	}
	return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("-_./,:=+@%", r):
		return false
	}
	return true
}
