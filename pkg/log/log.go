// Copyright 2016 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package log provides functionality similar to standard log package with some extensions:
//   - verbosity levels
//   - global verbosity setting that can be used by multiple packages
//   - a writer adapter that logs external tool output at a given level
package log

import (
	"flag"
	"io"
	golog "log"
	"strings"
	"sync/atomic"
)

var (
	flagV      = flag.Int("vv", 0, "verbosity")
	override   atomic.Int64
	overridden atomic.Bool
)

// SetVerbosity overrides the -vv flag value.
func SetVerbosity(v int) {
	override.Store(int64(v))
	overridden.Store(true)
}

// V reports whether messages of level v are printed.
func V(v int) bool {
	if overridden.Load() {
		return int64(v) <= override.Load()
	}
	return v <= *flagV
}

func Logf(v int, msg string, args ...interface{}) {
	if V(v) {
		golog.Printf(msg, args...)
	}
}

// SetOutput redirects all log output, mostly for tests.
func SetOutput(w io.Writer) {
	golog.SetOutput(w)
}

func Fatal(err error) {
	golog.Fatal(err)
}

func Fatalf(msg string, args ...interface{}) {
	golog.Fatalf(msg, args...)
}

// VerboseWriter logs every written chunk at the given level.
// Trailing newlines are trimmed since the logger adds its own.
type VerboseWriter int

func (w VerboseWriter) Write(data []byte) (int, error) {
	Logf(int(w), "%s", strings.TrimRight(string(data), "\n"))
	return len(data), nil
}
