// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package cpplint is a line-based style checker for C++ sources.
// It follows the conventions of Google's cpplint.py: every error has a category
// (e.g. "whitespace/tab") and a confidence from 1 to 5, errors below the verbosity level
// are dropped, categories can be switched off with filters ("-whitespace/braces"),
// and callers can inject additional per-line checks.
//
// Unlike cpplint.py there is no global error counter: every ProcessFiles call returns
// a Report with the errors of that invocation only.
package cpplint

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/osp-presubmit/pkg/log"
)

// Error is a single lint finding. Line is 1-based, 0 means the whole file.
type Error struct {
	File       string
	Line       int
	Category   string
	Confidence int
	Message    string
}

func (e Error) String() string {
	if e.Category == "" {
		return fmt.Sprintf("%v:%v:  %v", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%v:%v:  %v  [%v] [%v]", e.File, e.Line, e.Message, e.Category, e.Confidence)
}

// ErrorFunc reports an error on the line with the given 0-based index.
type ErrorFunc func(linenum int, category string, confidence int, message string)

// ExtraCheck is an additional rule invoked for every line of every processed file.
type ExtraCheck func(filename string, lines *CleansedLines, linenum int, report ErrorFunc)

type Options struct {
	// Errors with confidence below Verbosity are not reported.
	Verbosity int
	// Filters are applied in order, each is "+category" or "-category" (prefix match).
	Filters     []string
	ExtraChecks []ExtraCheck
	// Root is used to compute header guard names, defaults to the current directory.
	Root string
	// Output receives reported errors in cpplint's emacs format. Nil means no output.
	Output io.Writer
}

type Report struct {
	Errors []Error
}

// ErrorCount is the number of errors reported by the invocation.
func (r *Report) ErrorCount() int {
	return len(r.Errors)
}

// ProcessFiles lints all files with a recognized C++ extension and returns the reported errors.
// Files that can't be read are reported as errors as well.
func ProcessFiles(files []string, opts Options) (*Report, error) {
	st, err := newState(opts)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if !IsSourceFile(file) {
			log.Logf(1, "cpplint: ignoring %v: not a C++ file", file)
			continue
		}
		data, err := os.ReadFile(file)
		if err != nil {
			st.add(Error{File: file, Message: fmt.Sprintf("Skipping input '%v': Can't open for reading", file)})
			continue
		}
		st.processData(file, data)
	}
	return st.report, nil
}

// ProcessData lints in-memory file contents.
func ProcessData(filename string, data []byte, opts Options) (*Report, error) {
	st, err := newState(opts)
	if err != nil {
		return nil, err
	}
	st.processData(filename, data)
	return st.report, nil
}

var sourceExtensions = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".cxx": true, ".cu": true,
	".h": true, ".hh": true, ".hpp": true, ".hxx": true,
}

func IsSourceFile(file string) bool {
	return sourceExtensions[filepath.Ext(file)]
}

func IsHeaderFile(file string) bool {
	switch filepath.Ext(file) {
	case ".h", ".hh", ".hpp", ".hxx":
		return true
	}
	return false
}

type filter struct {
	exclude bool
	prefix  string
}

func parseFilters(specs []string) ([]filter, error) {
	var filters []filter
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		if spec[0] != '+' && spec[0] != '-' {
			return nil, fmt.Errorf("cpplint: every filter must start with + or -, got %q", spec)
		}
		filters = append(filters, filter{exclude: spec[0] == '-', prefix: spec[1:]})
	}
	return filters, nil
}

type state struct {
	opts    Options
	filters []filter
	report  *Report
}

func newState(opts Options) (*state, error) {
	filters, err := parseFilters(opts.Filters)
	if err != nil {
		return nil, err
	}
	return &state{
		opts:    opts,
		filters: filters,
		report:  new(Report),
	}, nil
}

func (st *state) filtered(category string) bool {
	res := false
	for _, f := range st.filters {
		if strings.HasPrefix(category, f.prefix) {
			res = f.exclude
		}
	}
	return res
}

func (st *state) add(e Error) {
	st.report.Errors = append(st.report.Errors, e)
	if st.opts.Output != nil {
		fmt.Fprintf(st.opts.Output, "%v\n", e)
	}
}

func (st *state) processData(filename string, data []byte) {
	lines := Cleanse(data)
	suppressed := parseNolint(lines.Raw)
	report := func(linenum int, category string, confidence int, message string) {
		if confidence < st.opts.Verbosity || st.filtered(category) || suppressed.has(linenum, category) {
			return
		}
		st.add(Error{
			File:       filename,
			Line:       linenum + 1,
			Category:   category,
			Confidence: confidence,
			Message:    message,
		})
	}
	for _, check := range fileChecks {
		check(st, filename, lines, report)
	}
	for i := 0; i < lines.NumLines(); i++ {
		for _, check := range lineChecks {
			check(filename, lines, i, report)
		}
		for _, check := range st.opts.ExtraChecks {
			check(filename, lines, i, report)
		}
	}
}

// nolint maps line index to suppressed categories; "*" suppresses everything.
type nolint map[int]map[string]bool

var nolintRe = regexp.MustCompile(`\bNOLINT(NEXTLINE)?\b(\(([^)]*)\))?`)

func parseNolint(raw []string) nolint {
	res := make(nolint)
	for i, line := range raw {
		match := nolintRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		target := i
		if match[1] != "" {
			target = i + 1
		}
		category := "*"
		if match[3] != "" && match[3] != "*" {
			category = match[3]
		}
		if res[target] == nil {
			res[target] = make(map[string]bool)
		}
		res[target][category] = true
	}
	return res
}

func (n nolint) has(linenum int, category string) bool {
	cats := n[linenum]
	return cats["*"] || cats[category]
}
