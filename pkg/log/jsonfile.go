// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

// Writes one JSON object per entry, for CI systems that scrape build logs.
type jsonFileLog struct {
	f    *os.File
	zl   zerolog.Logger
	next StackableLogger
}

var _ StackableLogger = (*jsonFileLog)(nil)

// AddJSONFileLog appends JSON entries to fname, creating it if necessary.
// Entries logged before the call are written first.
func AddJSONFileLog(fname string) error {
	f, err := os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	jl := &jsonFileLog{f: f, zl: zerolog.New(f)}
	if err = AddLogger(jl, true); err != nil {
		f.Close()
		return err
	}
	return nil
}

func (jl *jsonFileLog) AddEntry(e LogEntry) {
	if e.Flags&flags.NotFile == 0 && jl.f != nil {
		lvl := zerolog.InfoLevel
		if e.Flags&flags.Fatal != 0 {
			lvl = zerolog.ErrorLevel
		}
		jl.zl.WithLevel(lvl).
			Time("t", e.Time).
			Bool("user", e.Flags&flags.EndUser != 0).
			Msg(e.Text())
	}
	if jl.next != nil {
		jl.next.AddEntry(e)
	}
}

func (jl *jsonFileLog) ForwardTo(sl StackableLogger) {
	if jl.next == nil || sl == nil {
		jl.next = sl
	} else {
		panic("next already set")
	}
}

const JSONFileLogIdent = "jsonFileLog"

func (jl *jsonFileLog) Ident() string         { return JSONFileLogIdent }
func (jl *jsonFileLog) Next() StackableLogger { return jl.next }

func (jl *jsonFileLog) Finalize() {
	if jl.f != nil {
		if err := jl.f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "closing log file: %s\n", err)
		}
		jl.f = nil
	}
	if jl.next != nil {
		jl.next.Finalize()
	}
}
