// Copyright (C) 2015-2020 the Gprovision Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

package testlog

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/purecloudlabs/osboot/pkg/log"
)

//represents a Cmd in CmdMap
type Key string

//generates key for given command
func CmdKey(args ...string) Key {
	k := ""
	for _, arg := range args {
		k += fmt.Sprintf("%s|", arg)
	}
	return Key(k)
}

//execution result
type Result struct {
	Res string
	Err error
}

//data for use with UseMappedCmdHijacker
type HijackerData struct {
	Result   Result        //if NoRun is false, this is updated with result on each run
	RunCount int           //number of times the command has been invoked
	NoRun    bool          //if true, returns already-stored Result
	Effect   func()        //with NoRun, called in place of running the command
	Pause    time.Duration //in addition to any execution time, pause this long before returning
}

//map passed to UseMappedCmdHijacker
type CmdMap map[Key]HijackerData

// Using a map of commands, either record results or replay given results.
// Every command seen is appended to tlog.CmdLog. Limitation: not able to
// return different results for different exec's of a given command.
func (tlog *TstLog) UseMappedCmdHijacker(m CmdMap) {
	log.Cmd = func(cmd *exec.Cmd) (res string, err error) {
		key := CmdKey(cmd.Args...)
		tlog.CmdLog = append(tlog.CmdLog, key)
		log.Logf("Running %v...", cmd.Args)
		data := m[key]
		data.RunCount++
		if data.NoRun {
			if data.Effect != nil {
				data.Effect()
			}
			res, err = data.Result.Res, data.Result.Err
		} else {
			if cmd.Stdout != nil || cmd.Stderr != nil {
				err = cmd.Run()
			} else {
				var out []byte
				out, err = cmd.CombinedOutput()
				res = string(out)
			}
			if err != nil {
				log.Logf("Running %v: error %s\noutput:\n%s\n", cmd.Args, err, res)
			}
			data.Result.Res, data.Result.Err = res, err
		}
		m[key] = data
		time.Sleep(data.Pause)
		return
	}
}
