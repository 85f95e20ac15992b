// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

// Package testlog hijacks the output of osboot's pkg/log, and can hijack
// log.Cmd(). By default output prints through testing functions, but it can
// be kept in a buffer for analysis as part of the test.
//
// Cmd() hijacking lets build and launch code be tested without a Rust
// toolchain or an emulator on the machine running the tests.
package testlog

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/purecloudlabs/osboot/pkg/log"
	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

// A log.StackableLogger feeding testing.T. Constructed via NewTestLog().
type TstLog struct {
	events        leChan
	t             *testing.T    //log here if Buf is nil
	Buf           *bytes.Buffer //if non-nil, Msgf()/Logf() output goes here
	MsgCount      int           //counts number of calls to log.Msgf()
	LogCount      int           //counts number of calls to log.Logf()
	FatalCount    int           //counts number of calls to log.Fatalf()
	FatalIsNotErr bool          //if true, do not call t.Errorf() for Fatalf()
	CmdLog        []Key         //commands seen by a hijacker, in order
	freeze        bool          //do not write any more to Buf
	stderr        bool          //also immediately write to stderr
	mu            sync.RWMutex  //guards freeze
	bufMu         sync.Mutex    //guards Buf
	pending       sync.WaitGroup
	bgWg          sync.WaitGroup
}

// Returns a new TstLog. If bufferLog is true, logging goes to a buffer rather
// than to t.Log()/t.Error(). Do not share one TstLog between tests. Freeze()
// is registered as a cleanup, and restores log.Cmd as well.
func NewTestLog(t *testing.T, bufferLog, stderr bool) (tlog *TstLog) {
	tlog = &TstLog{
		events: make(leChan, 1024),
		t:      t,
		stderr: stderr,
	}
	if bufferLog {
		tlog.Buf = new(bytes.Buffer)
	}
	tlog.bgWg.Add(1)
	go tlog.bgProc()
	log.NewLogStack(tlog)
	log.SetFatalAction(log.FailAction{Terminator: func() {}})
	t.Cleanup(tlog.Freeze)
	return
}

var _ log.StackableLogger = (*TstLog)(nil)

func (tlog *TstLog) AddEntry(e log.LogEntry) {
	tlog.mu.RLock()
	defer tlog.mu.RUnlock()
	if tlog.freeze {
		return
	}
	tlog.pending.Add(1)
	tlog.events <- e
}

const TstLogIdent = "tstLog"

func (*TstLog) Ident() string                      { return TstLogIdent }
func (tl *TstLog) Next() log.StackableLogger       { return nil }
func (*TstLog) Finalize()                          {}
func (tl *TstLog) ForwardTo(_ log.StackableLogger) {}

type leChan chan log.LogEntry

func (tlog *TstLog) bgProc() {
	defer tlog.bgWg.Done()
	for evt := range tlog.events {
		tlog.handle(evt)
		tlog.pending.Done()
	}
}

func (tlog *TstLog) handle(evt log.LogEntry) {
	var pfx string
	switch {
	case evt.Flags&flags.Fatal != 0:
		tlog.FatalCount++
		if !tlog.FatalIsNotErr {
			tlog.t.Errorf("@%s: >>FATAL()<< %s", evt.Time.Format(stampMilli), evt.Text())
			return
		}
		pfx = ">>FATAL()<< "
	case evt.Flags&flags.EndUser != 0:
		tlog.MsgCount++
		pfx = "MSG:"
	default:
		tlog.LogCount++
		pfx = "LOG:"
	}
	line := pfx + evt.Text()
	if tlog.stderr {
		fmt.Fprintf(os.Stderr, "@%s: %s\n", evt.Time.Format(stampMilli), line)
	}
	if tlog.Buf != nil {
		tlog.bufMu.Lock()
		fmt.Fprintln(tlog.Buf, line)
		tlog.bufMu.Unlock()
	} else {
		tlog.t.Logf("@%s: %s", evt.Time.Format(stampMilli), line)
	}
}

const stampMilli = "15:04:05.000" //like time.StampMilli, but leaves off date

// Waits for queued entries to be processed, then returns the buffer content.
// Empty if the TstLog is unbuffered.
func (tlog *TstLog) String() string {
	tlog.pending.Wait()
	tlog.bufMu.Lock()
	defer tlog.bufMu.Unlock()
	if tlog.Buf == nil {
		return ""
	}
	return tlog.Buf.String()
}

// Call at end of test to sync log and shut down bgProc. Safe to call more
// than once.
func (tlog *TstLog) Freeze() {
	tlog.mu.Lock()
	if tlog.freeze {
		tlog.mu.Unlock()
		return
	}
	tlog.freeze = true
	tlog.mu.Unlock()

	log.DefaultLogStack()
	log.SetFatalAction(log.DefaultFatal)
	log.Cmd = log.DefaultCmd

	close(tlog.events)
	tlog.bgWg.Wait()
}
