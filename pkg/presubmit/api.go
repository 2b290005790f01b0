// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package presubmit implements the checks that run on a change before it is uploaded for review
// or committed. The change and all check collaborators (canned checks, the lint tool,
// the dependency checker) are supplied by a host through the Input and Output interfaces.
package presubmit

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/osp-presubmit/pkg/cpplint"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Result is a single check outcome. Items are optional per-location details.
type Result struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Items    []string `json:"items,omitempty"`
}

func (r Result) String() string {
	if len(r.Items) == 0 {
		return r.Message
	}
	return r.Message + "\n  " + strings.Join(r.Items, "\n  ")
}

// Output constructs results of a given severity.
type Output interface {
	Error(msg string, items ...string) Result
	Warning(msg string, items ...string) Result
}

type Action string

const (
	ActionAdd    Action = "A"
	ActionModify Action = "M"
	ActionDelete Action = "D"
)

type ChangedLine struct {
	// Line is 1-based.
	Line int
	Text string
}

type AffectedFile interface {
	// LocalPath is relative to the change root, in slash notation.
	LocalPath() string
	AbsolutePath() string
	Action() Action
	// NewContents returns the lines of the file after the change.
	NewContents() []string
	// ChangedLines returns added or modified lines.
	ChangedLines() []ChangedLine
}

// FileFilter selects affected files, nil selects all.
type FileFilter func(AffectedFile) bool

// Input is the change under review together with the collaborators the checks delegate to.
type Input interface {
	// LocalRoot is the absolute path of the change root.
	LocalRoot() string
	Description() string
	IsCommitting() bool
	// AffectedFiles returns changed files that are not deleted and not skipped.
	AffectedFiles(filter FileFilter) []AffectedFile
	// AffectedSourceFiles is like AffectedFiles, but also limited to source files.
	AffectedSourceFiles(filter FileFilter) []AffectedFile
	// SetFilesToSkip replaces the host default skip list.
	SetFilesToSkip(skip *PathFilter)
	Join(elem ...string) string
	Canned() CannedChecks
	Lint() LintTool
	NewDepsChecker(root string) DepsChecker
}

// CannedChecks are reusable checks supplied by the host.
type CannedChecks interface {
	PanProjectChecks(in Input, out Output) []Result
	CheckChangeHasNoCrAndHasOnlyOneEol(in Input, out Output) []Result
	CheckInclusiveLanguage(in Input, out Output) []Result
	CheckChangeTodoHasOwner(in Input, out Output) []Result
	CheckPatchFormatted(in Input, out Output) []Result
	CheckGNFormatted(in Input, out Output) []Result
	CheckChangedLUCIConfigs(in Input, out Output) []Result
}

// LintTool runs the line-based C++ linter.
// The returned report covers this invocation only.
type LintTool interface {
	ProcessFiles(files []string, opts cpplint.Options) (*cpplint.Report, error)
}

// DepsChecker validates includes against directory-level rules and returns violation descriptions.
type DepsChecker interface {
	CheckFiles(files []string) ([]string, error)
}

// HasErrors reports whether any result has error severity.
func HasErrors(results []Result) bool {
	for _, res := range results {
		if res.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Print writes results grouped by severity, errors first.
func Print(w io.Writer, results []Result) {
	for _, group := range []struct {
		severity Severity
		title    string
	}{
		{SeverityError, "** Presubmit ERRORS **"},
		{SeverityWarning, "** Presubmit Warnings **"},
	} {
		first := true
		for _, res := range results {
			if res.Severity != group.severity {
				continue
			}
			if first {
				fmt.Fprintf(w, "%v\n", group.title)
				first = false
			}
			fmt.Fprintf(w, "%v\n\n", res)
		}
	}
	if len(results) == 0 {
		fmt.Fprintf(w, "Presubmit checks passed.\n")
	}
}
