// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package host implements the presubmit capability interfaces on top of a local git checkout
// and the in-process lint, dependency and canned check implementations.
package host

import (
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/osp-presubmit/pkg/canned"
	"github.com/google/osp-presubmit/pkg/checkdeps"
	"github.com/google/osp-presubmit/pkg/cpplint"
	"github.com/google/osp-presubmit/pkg/log"
	"github.com/google/osp-presubmit/pkg/presubmit"
	"github.com/google/osp-presubmit/pkg/vcs"
)

type Input struct {
	root        string
	description string
	committing  bool
	head        *vcs.Commit
	files       []*File
	skip        *presubmit.PathFilter
	extra       *presubmit.PathFilter
	sourceExts  map[string]bool
	canned      *canned.Library
}

var (
	_ presubmit.Input        = (*Input)(nil)
	_ presubmit.AffectedFile = (*File)(nil)
	_ presubmit.Output       = Output{}
	_ presubmit.LintTool     = lintTool{}
	_ presubmit.DepsChecker  = depsChecker{}
)

// NewInput collects the change between cfg.Base and the working tree of repo.
// validator is used for LUCI config validation and may be nil.
func NewInput(cfg *Config, repo vcs.Repo, committing bool, validator canned.ConfigValidator) (*Input, error) {
	skip, err := skipFilter("files_to_skip", cfg.FilesToSkip)
	if err != nil {
		return nil, err
	}
	extra, err := skipFilter("extra_files_to_skip", cfg.ExtraFilesToSkip)
	if err != nil {
		return nil, err
	}
	head, err := repo.HeadCommit()
	if err != nil {
		return nil, err
	}
	changes, err := repo.ChangedFiles(cfg.Base)
	if err != nil {
		return nil, err
	}
	description, err := repo.Description(cfg.Base)
	if err != nil {
		return nil, err
	}
	in := &Input{
		root:        repo.Root(),
		description: description,
		committing:  committing,
		head:        head,
		skip:        skip,
		extra:       extra,
		sourceExts:  make(map[string]bool),
		canned:      canned.New(cfg.Canned, validator),
	}
	for _, ext := range cfg.SourceExtensions {
		in.sourceExts[ext] = true
	}
	for _, change := range changes {
		in.files = append(in.files, newFile(in.root, change))
	}
	statFiles.Add(len(in.files))
	log.Logf(0, "checking %v changed files in %v..%v (%v)", len(in.files), cfg.Base, head.Hash, head.Title)
	return in, nil
}

func (in *Input) LocalRoot() string {
	return in.root
}

// Head is the last commit of the change.
func (in *Input) Head() *vcs.Commit {
	return in.head
}

func (in *Input) Description() string {
	return in.description
}

func (in *Input) IsCommitting() bool {
	return in.committing
}

func (in *Input) AffectedFiles(filter presubmit.FileFilter) []presubmit.AffectedFile {
	var res []presubmit.AffectedFile
	for _, f := range in.files {
		if f.action == presubmit.ActionDelete || in.skip.Excluded(f.path) || in.extra.Excluded(f.path) {
			continue
		}
		if filter != nil && !filter(f) {
			continue
		}
		res = append(res, f)
	}
	return res
}

func (in *Input) AffectedSourceFiles(filter presubmit.FileFilter) []presubmit.AffectedFile {
	return in.AffectedFiles(func(f presubmit.AffectedFile) bool {
		return in.sourceExts[path.Ext(f.LocalPath())] && (filter == nil || filter(f))
	})
}

// SetFilesToSkip replaces the host default skip list, ExtraFilesToSkip stay in effect.
func (in *Input) SetFilesToSkip(skip *presubmit.PathFilter) {
	in.skip = skip
}

func (in *Input) Join(elem ...string) string {
	return filepath.Join(elem...)
}

func (in *Input) Canned() presubmit.CannedChecks {
	return in.canned
}

func (in *Input) Lint() presubmit.LintTool {
	return lintTool{}
}

func (in *Input) NewDepsChecker(root string) presubmit.DepsChecker {
	return depsChecker{checkdeps.NewChecker(root)}
}

type File struct {
	path   string
	abs    string
	action presubmit.Action
	lines  []presubmit.ChangedLine

	contentsOnce sync.Once
	contents     []string
}

func newFile(root string, change *vcs.FileChange) *File {
	f := &File{
		path:   change.Path,
		abs:    filepath.Join(root, filepath.FromSlash(change.Path)),
		action: presubmit.Action(change.Action),
	}
	for _, line := range change.Lines {
		f.lines = append(f.lines, presubmit.ChangedLine{Line: line.Num, Text: line.Text})
	}
	return f
}

func (f *File) LocalPath() string {
	return f.path
}

func (f *File) AbsolutePath() string {
	return f.abs
}

func (f *File) Action() presubmit.Action {
	return f.action
}

// NewContents returns lines of the file in the working tree without line terminators.
func (f *File) NewContents() []string {
	f.contentsOnce.Do(func() {
		data, err := os.ReadFile(f.abs)
		if err != nil {
			log.Logf(0, "failed to read %v: %v", f.abs, err)
			return
		}
		if len(data) != 0 {
			f.contents = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		}
	})
	return f.contents
}

func (f *File) ChangedLines() []presubmit.ChangedLine {
	return f.lines
}

// Output constructs results and counts them.
type Output struct{}

func (Output) Error(msg string, items ...string) presubmit.Result {
	statErrors.Add(1)
	return presubmit.Result{Severity: presubmit.SeverityError, Message: msg, Items: items}
}

func (Output) Warning(msg string, items ...string) presubmit.Result {
	statWarnings.Add(1)
	return presubmit.Result{Severity: presubmit.SeverityWarning, Message: msg, Items: items}
}

type lintTool struct{}

func (lintTool) ProcessFiles(files []string, opts cpplint.Options) (*cpplint.Report, error) {
	if opts.Output == nil {
		opts.Output = log.VerboseWriter(1)
	}
	start := time.Now()
	report, err := cpplint.ProcessFiles(files, opts)
	if err != nil {
		return nil, err
	}
	statLintTime.Add(int(time.Since(start).Milliseconds()))
	statLintErrors.Add(report.ErrorCount())
	return report, nil
}

type depsChecker struct {
	checker *checkdeps.Checker
}

func (dc depsChecker) CheckFiles(files []string) ([]string, error) {
	violations, err := dc.checker.CheckFiles(files)
	if err != nil {
		return nil, err
	}
	var res []string
	for i := range violations {
		res = append(res, violations[i].String())
	}
	statDepsViolations.Add(len(res))
	return res, nil
}
