// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"os"
	"strings"

	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

// Called after a fatal event has been logged and the stack finalized.
type FatalFunc func()
type PreFunc func(f string, va ...interface{})

// Actions to take when log.Fatalf() is called. Logging the event itself is
// done automatically.
type FailAction struct {
	// Prefix to add to message
	MsgPfx string
	// Runs before log.Finalize(), while the log is still writable.
	Pre PreFunc
	// Ends the process. Logs are no longer writable when this runs.
	Terminator FatalFunc
}

var fatalAction = DefaultFatal

// Sets up action to take when fatal event has been logged; see FailAction.
func SetFatalAction(act FailAction) { fatalAction = act }

// Default fatal action is to call os.Exit(1)
var DefaultFatal = FailAction{MsgPfx: "ERROR: ", Terminator: DefaultFatalAction}

func DefaultFatalAction() {
	if strings.HasSuffix(os.Args[0], ".test") {
		panic("generic fatal called from test")
	}
	os.Exit(1)
}

// Like Msgf, but does not return. Behavior modified by SetFatalAction().
func Fatalf(f string, va ...interface{}) {
	if logStack.Next() == nil && logStack.Ident() == MemLogIdent {
		//no sink configured; make sure the message is seen
		AddConsoleLog(flags.EndUser)
	}
	FlaggedLogf(flags.Fatal, fatalAction.MsgPfx+f, va...)
	if fatalAction.Pre != nil {
		fatalAction.Pre(fatalAction.MsgPfx+f, va...)
	}
	Finalize()
	fatalAction.Terminator()
}
