// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package log

import (
	"fmt"
	"sync"
	"time"

	"github.com/purecloudlabs/osboot/pkg/log/flags"
)

// A logger which can be chained to others. Each entry travels down the stack
// from the most recently added sink to the oldest.
//
// Normal logging goes through the package-level functions (Logf, Msgf,
// Fatalf); only sink implementations need this interface.
type StackableLogger interface {
	// Add an entry to the log, then pass it to Next() if non-nil.
	AddEntry(e LogEntry)

	// Chain this logger to sl. Chaining a logger that already has a next
	// logger is an error, unless sl is nil.
	ForwardTo(sl StackableLogger)

	// Identifies the type of logger; no two loggers in a stack share one.
	Ident() string

	// Returns next StackableLogger or nil
	Next() StackableLogger

	// Flush and release resources, then call Finalize on Next() if non-nil.
	Finalize()
}

// Topmost logger. Guarded by logStackMtx.
var logStack StackableLogger = &memLog{}

var logStackMtx sync.Mutex

type stackErr struct {
	Id string
}

func (se *stackErr) Error() string {
	return fmt.Sprintf("Duplicate logger %s in stack", se.Id)
}

// Flushes data, closes files, etc
func Finalize() {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	logStack.Finalize()
}

// Finalizes the existing stack and replaces it with a lone memLog.
func DefaultLogStack() { NewLogStack(&memLog{}) }

// Finalizes the existing stack and makes newLog the only logger.
func NewLogStack(newLog StackableLogger) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	if logStack != nil {
		logStack.Finalize()
	}
	logStack = newLog
}

// Adds sl on top of the stack. If addPrevious is true, entries held by a
// memLog in the stack are replayed into sl first.
//
// Prefer the AddXLog() functions; AddLogger is for their use.
//
// The only possible error is sl duplicating the Ident() of a logger already
// in the stack.
func AddLogger(sl StackableLogger, addPrevious bool) error {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	if err := checkDuplicate(sl, logStack); err != nil {
		return err
	}
	if addPrevious {
		addPreviousEvents(sl)
	}
	sl.ForwardTo(logStack)
	logStack = sl
	return nil
}

// Recursive check that newLogger's ident is not used in the stack below sl.
func checkDuplicate(newLogger, sl StackableLogger) error {
	if newLogger.Ident() == sl.Ident() {
		return &stackErr{Id: sl.Ident()}
	}
	if next := sl.Next(); next != nil {
		return checkDuplicate(newLogger, next)
	}
	return nil
}

// Remove a log with the given id from the stack
func RemoveLogger(id string) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	var prev StackableLogger
	for l := logStack; l != nil; l = l.Next() {
		if l.Ident() != id {
			prev = l
			continue
		}
		next := l.Next()
		l.ForwardTo(nil)
		l.Finalize()
		if prev == nil {
			logStack = next
			if logStack == nil {
				logStack = &memLog{}
			}
		} else {
			prev.ForwardTo(nil)
			prev.ForwardTo(next)
		}
		return
	}
}

// LogEntry is the record passed between StackableLoggers.
type LogEntry struct {
	Time  time.Time `json:"t"`
	Msg   string
	Args  []interface{} `json:",omitempty"`
	Flags flags.Flag    `json:",omitempty"`
}

// Backend of Logf(), Msgf(), Fatalf(). Inserts an entry into the topmost log.
func FlaggedLogf(opts flags.Flag, f string, va ...interface{}) {
	logStackMtx.Lock()
	defer logStackMtx.Unlock()
	logStack.AddEntry(LogEntry{
		Time:  time.Now(),
		Flags: opts,
		Msg:   f,
		Args:  va,
	})
}

// Text renders the message with its args, without time or flag markers. Msg
// is always a format string, even when Args is empty.
func (le *LogEntry) Text() string {
	return fmt.Sprintf(le.Msg, le.Args...)
}

func (le *LogEntry) String() string {
	var div string
	switch {
	case le.Flags&flags.Fatal != 0:
		div = "!! "
	case le.Flags&flags.EndUser != 0:
		div = "-- "
	case le.Flags == 0:
		div = "*- "
	default:
		div = "?? "
	}
	return div + le.Time.Format(TimestampLayout) + " " + div + le.Text()
}

// Replays memLog entries into a logger about to join the stack.
func addPreviousEvents(newlog StackableLogger) {
	if _, isMem := newlog.(*memLog); isMem {
		return
	}
	if mem, ok := FindInStack(MemLogIdent).(*memLog); ok {
		for _, e := range mem.Entries() {
			newlog.AddEntry(e)
		}
	}
}

// Return true if a log in the stack matches given id
func InStack(id string) bool {
	return FindInStack(id) != nil
}

// Return StackableLogger matching id, or nil
func FindInStack(id string) StackableLogger {
	for l := logStack; l != nil; l = l.Next() {
		if l.Ident() == id {
			return l
		}
	}
	return nil
}
