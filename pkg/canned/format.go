// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package canned

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/google/osp-presubmit/pkg/log"
	"github.com/google/osp-presubmit/pkg/osutil"
	"github.com/google/osp-presubmit/pkg/presubmit"
	dmp "github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/sync/errgroup"
)

var clangFormatExtensions = map[string]bool{
	".c": true, ".cc": true, ".cpp": true, ".h": true, ".hpp": true,
	".m": true, ".mm": true, ".proto": true,
}

// CheckPatchFormatted runs clang-format over affected C/C++ files and lists the files
// whose formatted contents differ from the working tree.
func (lib *Library) CheckPatchFormatted(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	files := in.AffectedSourceFiles(func(file presubmit.AffectedFile) bool {
		return clangFormatExtensions[path.Ext(file.LocalPath())]
	})
	if len(files) == 0 {
		return nil
	}
	if !osutil.HasBinary(lib.cfg.ClangFormat) {
		return []presubmit.Result{out.Warning(
			fmt.Sprintf("%v is not found, skipping the format check.", lib.cfg.ClangFormat))}
	}
	items := make([]string, len(files))
	errs := make([]error, len(files))
	var eg errgroup.Group
	eg.SetLimit(lib.cfg.FormatProcs)
	for i, file := range files {
		eg.Go(func() error {
			items[i], errs[i] = lib.clangFormat(in.LocalRoot(), file)
			return nil
		})
	}
	eg.Wait()
	var results []presubmit.Result
	var unformatted []string
	for i, item := range items {
		if errs[i] != nil {
			results = append(results, out.Error(
				fmt.Sprintf("Failed to format %v: %v", files[i].LocalPath(), errs[i])))
			continue
		}
		if item != "" {
			unformatted = append(unformatted, item)
		}
	}
	if len(unformatted) != 0 {
		results = append(results, resultFunc(in, out)(
			"The following files are not formatted, run \"git cl format\" to fix:", unformatted...))
	}
	return results
}

// clangFormat returns a summary of the changes clang-format would make, or "" if none.
func (lib *Library) clangFormat(root string, file presubmit.AffectedFile) (string, error) {
	data, err := os.ReadFile(file.AbsolutePath())
	if err != nil {
		return "", err
	}
	cmd := osutil.Command(lib.cfg.ClangFormat, "-style=file", file.AbsolutePath())
	cmd.Dir = root
	stdout := new(bytes.Buffer)
	cmd.Stdout = stdout
	if _, err := osutil.Run(lib.cfg.FormatTimeout, cmd); err != nil {
		return "", osutil.PrependContext(lib.cfg.ClangFormat, err)
	}
	log.Logf(2, "%v: formatted %v", lib.cfg.ClangFormat, file.LocalPath())
	if bytes.Equal(data, stdout.Bytes()) {
		return "", nil
	}
	return fmt.Sprintf("%v: %v", file.LocalPath(), diffSummary(string(data), stdout.String())), nil
}

// diffSummary describes a line-level diff as "+N -M lines, first at line L".
func diffSummary(from, to string) string {
	matcher := dmp.New()
	chars1, chars2, lines := matcher.DiffLinesToChars(from, to)
	diffs := matcher.DiffCharsToLines(matcher.DiffMain(chars1, chars2, false), lines)
	added, removed, line, first := 0, 0, 1, 0
	for _, diff := range diffs {
		n := strings.Count(diff.Text, "\n")
		if !strings.HasSuffix(diff.Text, "\n") {
			n++
		}
		switch diff.Type {
		case dmp.DiffEqual:
			line += n
			continue
		case dmp.DiffInsert:
			added += n
		case dmp.DiffDelete:
			removed += n
		}
		if first == 0 {
			first = line
		}
		if diff.Type == dmp.DiffDelete {
			line += n
		}
	}
	return fmt.Sprintf("+%v -%v lines, first at line %v", added, removed, first)
}

// CheckGNFormatted checks .gn and .gni files with "gn format --dry-run".
func (lib *Library) CheckGNFormatted(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	files := in.AffectedFiles(func(file presubmit.AffectedFile) bool {
		ext := path.Ext(file.LocalPath())
		return ext == ".gn" || ext == ".gni"
	})
	if len(files) == 0 {
		return nil
	}
	if !osutil.HasBinary(lib.cfg.GN) {
		return []presubmit.Result{out.Warning(
			fmt.Sprintf("%v is not found, skipping the GN format check.", lib.cfg.GN))}
	}
	var results []presubmit.Result
	var unformatted []string
	for _, file := range files {
		_, err := osutil.RunCmd(lib.cfg.FormatTimeout, in.LocalRoot(), lib.cfg.GN,
			"format", "--dry-run", file.AbsolutePath())
		if err == nil {
			continue
		}
		// Exit status 2 means the file would be reformatted.
		var verr *osutil.VerboseError
		if errors.As(err, &verr) && verr.ExitCode == 2 {
			unformatted = append(unformatted, file.LocalPath())
			continue
		}
		results = append(results, out.Error(
			fmt.Sprintf("Failed to run %v format on %v: %v", lib.cfg.GN, file.LocalPath(), err)))
	}
	if len(unformatted) != 0 {
		results = append(results, resultFunc(in, out)(
			"The following GN files are not formatted, run \"gn format\" to fix:", unformatted...))
	}
	return results
}
