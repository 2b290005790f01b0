// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package canned

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/osp-presubmit/pkg/cpplint"
	"github.com/google/osp-presubmit/pkg/log"
	"github.com/google/osp-presubmit/pkg/presubmit"
)

var (
	longLineExemptRe = regexp.MustCompile(`^\s*#\s*(include|import|pragma)\b|https?://|\bNOLINT\b`)
	doNotSubmit      = "DO NOT " + "SUBMIT"
	nocheckRe        = regexp.MustCompile(`\bnocheck\b`)
	todoRe           = regexp.MustCompile(`\bTODO\b`)
	todoOwnerRe      = regexp.MustCompile(`^\(\s*[\w.@/:-]+`)
	inclusiveRe      = regexp.MustCompile(`(?i)\b((black|white)[-_ ]?list(s|ed|ing)?|master(s)?|slave(s)?)\b`)
)

// PanProjectChecks runs the line hygiene checks on changed lines, checks license headers
// of new source files and requires a change description.
func (lib *Library) PanProjectChecks(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	var results []presubmit.Result
	results = append(results, lib.checkLongLines(in, out)...)
	results = append(results, checkTabs(in, out)...)
	results = append(results, checkTrailingWhitespace(in, out)...)
	results = append(results, checkDoNotSubmit(in, out)...)
	results = append(results, lib.checkLicense(in, out)...)
	if strings.TrimSpace(in.Description()) == "" {
		results = append(results, out.Warning("Change description is empty."))
	}
	return results
}

func (lib *Library) checkLongLines(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	var items []string
	forEachChangedLine(in, func(file presubmit.AffectedFile, line presubmit.ChangedLine) {
		n := utf8.RuneCountInString(line.Text)
		if n <= lib.cfg.MaxLineLength || longLineExemptRe.MatchString(line.Text) {
			return
		}
		items = append(items, fmt.Sprintf("%v:%v, line %v characters", file.LocalPath(), line.Line, n))
	})
	if len(items) == 0 {
		return nil
	}
	msg := fmt.Sprintf("Found lines longer than %v characters (first 5 shown).", lib.cfg.MaxLineLength)
	if len(items) > 5 {
		items = items[:5]
	}
	return []presubmit.Result{resultFunc(in, out)(msg, items...)}
}

func checkTabs(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	var items []string
	forEachChangedLine(in, func(file presubmit.AffectedFile, line presubmit.ChangedLine) {
		name := path.Base(file.LocalPath())
		if name == "Makefile" || path.Ext(name) == ".mk" {
			return
		}
		if strings.Contains(line.Text, "\t") {
			items = append(items, fmt.Sprintf("%v:%v", file.LocalPath(), line.Line))
		}
	})
	if len(items) == 0 {
		return nil
	}
	return []presubmit.Result{out.Error("Found a tab character in:", items...)}
}

func checkTrailingWhitespace(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	var items []string
	forEachChangedLine(in, func(file presubmit.AffectedFile, line presubmit.ChangedLine) {
		text := strings.TrimSuffix(line.Text, "\r")
		if text != strings.TrimRight(text, " \t") {
			items = append(items, fmt.Sprintf("%v:%v", file.LocalPath(), line.Line))
		}
	})
	if len(items) == 0 {
		return nil
	}
	return []presubmit.Result{out.Error("Found line ending with white spaces in:", items...)}
}

func checkDoNotSubmit(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	var items []string
	forEachChangedLine(in, func(file presubmit.AffectedFile, line presubmit.ChangedLine) {
		if strings.Contains(line.Text, doNotSubmit) {
			items = append(items, fmt.Sprintf("%v:%v", file.LocalPath(), line.Line))
		}
	})
	var results []presubmit.Result
	if len(items) != 0 {
		results = append(results, resultFunc(in, out)(
			fmt.Sprintf("Found %v in files:", doNotSubmit), items...))
	}
	if strings.Contains(in.Description(), doNotSubmit) {
		results = append(results, resultFunc(in, out)(
			fmt.Sprintf("%v is present in the change description.", doNotSubmit)))
	}
	return results
}

// License headers are only required in added source files, existing files are left alone.
func (lib *Library) checkLicense(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	if lib.cfg.LicenseHeader == "" {
		return nil
	}
	re, err := regexp.Compile(lib.cfg.LicenseHeader)
	if err != nil {
		return []presubmit.Result{out.Error(fmt.Sprintf("Bad license header regexp: %v", err))}
	}
	const headerLines = 5
	var items []string
	files := in.AffectedSourceFiles(func(file presubmit.AffectedFile) bool {
		return file.Action() == presubmit.ActionAdd && cpplint.IsSourceFile(file.LocalPath())
	})
	for _, file := range files {
		lines := file.NewContents()
		if len(lines) == 0 {
			continue
		}
		if len(lines) > headerLines {
			lines = lines[:headerLines]
		}
		if !re.MatchString(strings.Join(lines, "\n")) {
			items = append(items, file.LocalPath())
		}
	}
	if len(items) == 0 {
		return nil
	}
	return []presubmit.Result{out.Error(
		fmt.Sprintf("License must match:\n%v\nFound a bad license header in these files:",
			lib.cfg.LicenseHeader), items...)}
}

// CheckChangeHasNoCrAndHasOnlyOneEol requires source files to use \n line endings
// and to end with exactly one newline. Empty files are fine.
func (lib *Library) CheckChangeHasNoCrAndHasOnlyOneEol(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	var crFiles, eolFiles []string
	for _, file := range in.AffectedSourceFiles(nil) {
		data, err := os.ReadFile(file.AbsolutePath())
		if err != nil {
			log.Logf(0, "failed to read %v: %v", file.AbsolutePath(), err)
			continue
		}
		if bytes.IndexByte(data, '\r') != -1 {
			crFiles = append(crFiles, file.LocalPath())
		}
		if len(data) != 0 && (!bytes.HasSuffix(data, []byte("\n")) || bytes.HasSuffix(data, []byte("\n\n"))) {
			eolFiles = append(eolFiles, file.LocalPath())
		}
	}
	var results []presubmit.Result
	if len(crFiles) != 0 {
		results = append(results, out.Warning("Found a CR character in these files:", crFiles...))
	}
	if len(eolFiles) != 0 {
		results = append(results, out.Warning(
			"These files should end in one (and only one) newline character:", eolFiles...))
	}
	return results
}

// CheckInclusiveLanguage flags non-inclusive terms on changed lines.
// Lines containing "nocheck" are skipped.
func (lib *Library) CheckInclusiveLanguage(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	var items []string
	forEachChangedLine(in, func(file presubmit.AffectedFile, line presubmit.ChangedLine) {
		if nocheckRe.MatchString(line.Text) || lib.inclusiveLanguageExempt(file.LocalPath()) {
			return
		}
		for _, term := range inclusiveRe.FindAllString(line.Text, -1) {
			items = append(items, fmt.Sprintf("%v:%v: %v", file.LocalPath(), line.Line, term))
		}
	})
	if len(items) == 0 {
		return nil
	}
	return []presubmit.Result{out.Error(
		"Banned non-inclusive language was used (add \"nocheck\" to the line to ignore):", items...)}
}

func (lib *Library) inclusiveLanguageExempt(file string) bool {
	for _, pattern := range lib.cfg.InclusiveLanguageExempt {
		if ok, _ := doublestar.Match(pattern, file); ok {
			return true
		}
	}
	return false
}

// CheckChangeTodoHasOwner requires every new TODO to name an owner or a bug: TODO(name).
func (lib *Library) CheckChangeTodoHasOwner(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	var items []string
	forEachChangedLine(in, func(file presubmit.AffectedFile, line presubmit.ChangedLine) {
		for _, loc := range todoRe.FindAllStringIndex(line.Text, -1) {
			if !todoOwnerRe.MatchString(line.Text[loc[1]:]) {
				items = append(items, fmt.Sprintf("%v:%v", file.LocalPath(), line.Line))
				break
			}
		}
	})
	if len(items) == 0 {
		return nil
	}
	return []presubmit.Result{out.Warning("Found TODO with no owner in:", items...)}
}
