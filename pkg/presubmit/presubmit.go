// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package presubmit

import (
	"fmt"

	"github.com/google/osp-presubmit/pkg/cpplint"
	"github.com/google/osp-presubmit/pkg/log"
)

const lintVerbosity = 4

var lintFilters = []string{
	"-build/header_guard",
	"-whitespace/braces",
}

// CheckChangeOnUpload runs the checks for a change that is being uploaded for review.
func CheckChangeOnUpload(in Input, out Output) []Result {
	in.SetFilesToSkip(defaultFilter)
	results := commonChecks(in, out)
	results = append(results, in.Canned().CheckChangedLUCIConfigs(in, out)...)
	return results
}

// CheckChangeOnCommit runs the checks for a change that is being committed.
func CheckChangeOnCommit(in Input, out Output) []Result {
	in.SetFilesToSkip(defaultFilter)
	return commonChecks(in, out)
}

func commonChecks(in Input, out Output) []Result {
	canned := in.Canned()
	checks := []struct {
		name string
		fn   func(Input, Output) []Result
	}{
		// Long lines, tabs, stray whitespace, license headers, DO NOT SUBMIT, change description.
		{"pan-project", canned.PanProjectChecks},
		// No carriage returns, files end with exactly one newline.
		{"cr-eol", canned.CheckChangeHasNoCrAndHasOnlyOneEol},
		{"inclusive-language", canned.CheckInclusiveLanguage},
		// TODOs must name an owner or a bug.
		{"todo-owner", canned.CheckChangeTodoHasOwner},
		{"cpplint", checkLint},
		{"clang-format", canned.CheckPatchFormatted},
		{"gn-format", canned.CheckGNFormatted},
		{"checkdeps", checkDeps},
	}
	var results []Result
	for _, check := range checks {
		res := check.fn(in, out)
		log.Logf(1, "presubmit: %v: %v results", check.name, len(res))
		results = append(results, res...)
	}
	return results
}

func affectedSourcePaths(in Input) []string {
	var files []string
	for _, f := range in.AffectedSourceFiles(nil) {
		files = append(files, f.AbsolutePath())
	}
	return files
}

func checkLint(in Input, out Output) []Result {
	files := affectedSourcePaths(in)
	if len(files) == 0 {
		return nil
	}
	report, err := in.Lint().ProcessFiles(files, cpplint.Options{
		Verbosity:   lintVerbosity,
		Filters:     lintFilters,
		ExtraChecks: []cpplint.ExtraCheck{CheckNoexceptOnMove},
		Root:        in.LocalRoot(),
	})
	if err != nil {
		return []Result{out.Error(fmt.Sprintf("Failed to run cpplint: %v", err))}
	}
	if report.ErrorCount() == 0 {
		return nil
	}
	var items []string
	for _, e := range report.Errors {
		items = append(items, e.String())
	}
	// Lint failures only block commits, on upload they are advisory.
	result := out.Warning
	if in.IsCommitting() {
		result = out.Error
	}
	return []Result{result("Changelist failed cpplint check.", items...)}
}

func checkDeps(in Input, out Output) []Result {
	files := affectedSourcePaths(in)
	if len(files) == 0 {
		return nil
	}
	violations, err := in.NewDepsChecker(in.LocalRoot()).CheckFiles(files)
	if err != nil {
		return []Result{out.Error(fmt.Sprintf("Failed to run checkdeps: %v", err))}
	}
	var results []Result
	for _, v := range violations {
		results = append(results, out.Error(v))
	}
	return results
}
