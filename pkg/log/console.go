// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

type consoleLog struct {
	flags flags.Flag
	w     io.Writer
	next  StackableLogger
}

// Adds a consoleLog writing to stderr. Flags determine which events display:
// flags.NA shows everything, flags.EndUser only Msgf() and Fatalf() output.
func AddConsoleLog(f flags.Flag) { AddConsoleWriter(os.Stderr, f) }

// Like AddConsoleLog, writing to w.
func AddConsoleWriter(w io.Writer, f flags.Flag) {
	_ = AddLogger(&consoleLog{flags: f, w: w}, true)
}

var _ StackableLogger = (*consoleLog)(nil)

func (l *consoleLog) AddEntry(e LogEntry) {
	if l.flags == 0 || e.Flags&(l.flags|flags.Fatal) > 0 {
		fmt.Fprintln(l.w, e.String())
	}
	if l.next != nil {
		l.next.AddEntry(e)
	}
}

func (l *consoleLog) ForwardTo(sl StackableLogger) {
	if l.next == nil || sl == nil {
		l.next = sl
	} else {
		panic("next already set")
	}
}

const ConsoleLogIdent = "consoleLog"

func (*consoleLog) Ident() string           { return ConsoleLogIdent }
func (l *consoleLog) Next() StackableLogger { return l.next }

func (l *consoleLog) Finalize() {
	if l.next != nil {
		l.next.Finalize()
	}
}
