// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package presubmit

import (
	"bytes"
	"errors"
	"path"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/osp-presubmit/pkg/cpplint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcluded(t *testing.T) {
	tests := map[string]bool{
		"third_party/abseil/src/absl/base/config.h":   true,
		"third_party/boringssl/BUILD.gn.orig":         true,
		`third_party\tinycbor\src\cbor.h`:             true,
		"third_party/chromium_quic/src/net/quic.cc":   true,
		"third_party/chromium_quic/build/BUILD.gn":    true,
		"third_party/chromium_quic/src/BUILD.gn":      true,
		"out/Default/gen/foo.h":                       true,
		"build/Debug/obj/foo.o":                       true,
		"xcodebuild/Release/foo":                      true,
		`out\Release\foo.cc`:                          true,
		"platform/fix.diff":                           true,
		"0001-fix.patch":                              true,
		"third_party/abseil/BUILD.gn":                 false,
		"third_party/x/BUILD.gn":                      false,
		"third_party/chromium_quic/BUILD.gn":          false,
		"platform/api/time.h":                         false,
		"cast/streaming/receiver_session.cc":          false,
		"tools/output/format.cc":                      false,
		"docs/Debugging.md":                           false,
		"BUILD.gn":                                    false,
		"src/third_party/BUILD.gn.not_really_a_build": false,
		".diff": false,
	}
	for p, want := range tests {
		assert.Equal(t, want, Excluded(p), "path: %v", p)
	}
}

func TestPathFilter(t *testing.T) {
	var nilFilter *PathFilter
	assert.False(t, nilFilter.Excluded("third_party/foo.h"))

	f, err := NewPathFilter([]SkipPattern{{Match: `^gen/`, Except: `\.keep$`}})
	require.NoError(t, err)
	assert.True(t, f.Excluded("gen/foo.h"))
	assert.False(t, f.Excluded("gen/foo.keep"))
	assert.False(t, f.Excluded("src/gen/foo.h"))

	_, err = NewPathFilter([]SkipPattern{{Match: `(`}})
	assert.Error(t, err)
	_, err = NewPathFilter([]SkipPattern{{Match: `a`, Except: `[`}})
	assert.Error(t, err)
}

func lintMoveConstructors(t *testing.T, filename, data string) []string {
	t.Helper()
	report, err := cpplint.ProcessData(filename, []byte(data), cpplint.Options{
		Verbosity:   lintVerbosity,
		Filters:     []string{"-", "+build/noexcept"},
		ExtraChecks: []cpplint.ExtraCheck{CheckNoexceptOnMove},
	})
	require.NoError(t, err)
	var res []string
	for _, e := range report.Errors {
		res = append(res, e.String())
	}
	return res
}

func TestCheckNoexceptOnMove(t *testing.T) {
	tests := []struct {
		file string
		line string
		want []string
	}{
		{
			file: "foo.h",
			line: "  Foo(Foo&& other) {",
			want: []string{"foo.h:1:  Move constructor of Foo is not declared noexcept: " +
				"Foo(Foo&& other) {  [build/noexcept] [4]"},
		},
		{
			file: "foo.h",
			line: "  Foo(Foo&&) = default;",
			want: []string{"foo.h:1:  Move constructor of Foo is not declared noexcept: " +
				"Foo(Foo&&) =  [build/noexcept] [4]"},
		},
		{
			file: "foo.h",
			line: "  explicit SerialDeletePtr( SerialDeletePtr && other ) ;",
			want: []string{"foo.h:1:  Move constructor of SerialDeletePtr is not declared noexcept: " +
				"SerialDeletePtr( SerialDeletePtr && other ) ;  [build/noexcept] [4]"},
		},
		{file: "foo.h", line: "  Foo(Foo&& other) noexcept {"},
		{file: "foo.h", line: "  Foo(Foo&& other) noexcept = default;"},
		{file: "foo.h", line: "  Foo(Foo&& other) noexcept;"},
		{file: "foo.h", line: "  Foo& operator=(Foo&& other);"},
		{file: "foo.h", line: "  Bar(Foo&& foo);"},
		{file: "foo.h", line: "  Foo(const Foo& other);"},
		{file: "foo.h", line: "  // Foo(Foo&& other) {"},
		{file: "foo.h", line: `  const char* s = "Foo(Foo&& other) {";`},
		// Declarations spanning several lines are not recognized.
		{file: "foo.h", line: "  Foo(Foo&& other)\n      : x_(other.x_) {}"},
		// Only headers are checked.
		{file: "foo.cc", line: "Foo::Foo(Foo&& other) {"},
		{file: "foo.hpp", line: "Foo(Foo&& other) {"},
	}
	for _, test := range tests {
		got := lintMoveConstructors(t, test.file, test.line+"\n")
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%v: %q:\n%v", test.file, test.line, diff)
		}
	}
}

func TestMatchMoveConstructor(t *testing.T) {
	ctor := matchMoveConstructor("Bar(Foo&& f); Foo(Foo&& f) {")
	require.NotNil(t, ctor)
	assert.Equal(t, "Foo", ctor.className)
	assert.Equal(t, "Foo(Foo&& f) {", ctor.text)
	assert.True(t, ctor.lacksNoexcept)

	ctor = matchMoveConstructor("Foo(Foo&& f) noexcept {")
	require.NotNil(t, ctor)
	assert.False(t, ctor.lacksNoexcept)

	assert.Nil(t, matchMoveConstructor("Foo(Foo&& f)"))

	// A preceding rvalue-taking call must not consume the constructor that follows it.
	ctor = matchMoveConstructor("X(Y&& a) Foo(Foo&& b) {")
	require.NotNil(t, ctor)
	assert.Equal(t, "Foo", ctor.className)
	assert.Equal(t, "Foo(Foo&& b) {", ctor.text)
	assert.True(t, ctor.lacksNoexcept)

	ctor = matchMoveConstructor("Bar(Baz&& a) noexcept, Foo(Foo&& b) noexcept;")
	require.NotNil(t, ctor)
	assert.Equal(t, "Foo", ctor.className)
	assert.False(t, ctor.lacksNoexcept)
}

type fakeFile struct {
	path string
	root string
}

func (f *fakeFile) LocalPath() string           { return f.path }
func (f *fakeFile) AbsolutePath() string        { return filepath.Join(f.root, filepath.FromSlash(f.path)) }
func (f *fakeFile) Action() Action              { return ActionModify }
func (f *fakeFile) NewContents() []string       { return nil }
func (f *fakeFile) ChangedLines() []ChangedLine { return nil }

type fakeLint struct {
	count int
	err   error
	files []string
	opts  cpplint.Options
}

func (l *fakeLint) ProcessFiles(files []string, opts cpplint.Options) (*cpplint.Report, error) {
	l.files = files
	l.opts = opts
	if l.err != nil {
		return nil, l.err
	}
	report := new(cpplint.Report)
	for i := 0; i < l.count; i++ {
		report.Errors = append(report.Errors, cpplint.Error{File: "a.h", Line: i + 1, Message: "bad"})
	}
	return report, nil
}

type fakeDeps struct {
	root       string
	violations []string
	err        error
}

func (d *fakeDeps) CheckFiles(files []string) ([]string, error) {
	return d.violations, d.err
}

type fakeCanned struct {
	calls []string
}

func (c *fakeCanned) run(name string, out Output) []Result {
	c.calls = append(c.calls, name)
	return []Result{out.Warning(name)}
}

func (c *fakeCanned) PanProjectChecks(in Input, out Output) []Result {
	return c.run("pan-project", out)
}

func (c *fakeCanned) CheckChangeHasNoCrAndHasOnlyOneEol(in Input, out Output) []Result {
	return c.run("cr-eol", out)
}

func (c *fakeCanned) CheckInclusiveLanguage(in Input, out Output) []Result {
	return c.run("inclusive", out)
}

func (c *fakeCanned) CheckChangeTodoHasOwner(in Input, out Output) []Result {
	return c.run("todo", out)
}

func (c *fakeCanned) CheckPatchFormatted(in Input, out Output) []Result {
	return c.run("clang-format", out)
}

func (c *fakeCanned) CheckGNFormatted(in Input, out Output) []Result {
	return c.run("gn-format", out)
}

func (c *fakeCanned) CheckChangedLUCIConfigs(in Input, out Output) []Result {
	return c.run("luci", out)
}

type fakeInput struct {
	root       string
	files      []string
	committing bool
	skip       *PathFilter
	canned     *fakeCanned
	lint       *fakeLint
	deps       *fakeDeps
}

func newFakeInput(files ...string) *fakeInput {
	return &fakeInput{
		root:   "/src",
		files:  files,
		canned: new(fakeCanned),
		lint:   new(fakeLint),
		deps:   new(fakeDeps),
	}
}

func (in *fakeInput) LocalRoot() string   { return in.root }
func (in *fakeInput) Description() string { return "Fix things" }
func (in *fakeInput) IsCommitting() bool  { return in.committing }

func (in *fakeInput) AffectedFiles(filter FileFilter) []AffectedFile {
	var res []AffectedFile
	for _, file := range in.files {
		f := &fakeFile{path: file, root: in.root}
		if in.skip.Excluded(file) || filter != nil && !filter(f) {
			continue
		}
		res = append(res, f)
	}
	return res
}

func (in *fakeInput) AffectedSourceFiles(filter FileFilter) []AffectedFile {
	return in.AffectedFiles(func(f AffectedFile) bool {
		ext := path.Ext(f.LocalPath())
		return (ext == ".h" || ext == ".cc") && (filter == nil || filter(f))
	})
}

func (in *fakeInput) SetFilesToSkip(skip *PathFilter) { in.skip = skip }
func (in *fakeInput) Join(elem ...string) string      { return filepath.Join(elem...) }
func (in *fakeInput) Canned() CannedChecks            { return in.canned }
func (in *fakeInput) Lint() LintTool                  { return in.lint }

func (in *fakeInput) NewDepsChecker(root string) DepsChecker {
	in.deps.root = root
	return in.deps
}

type fakeOutput struct{}

func (fakeOutput) Error(msg string, items ...string) Result {
	return Result{Severity: SeverityError, Message: msg, Items: items}
}

func (fakeOutput) Warning(msg string, items ...string) Result {
	return Result{Severity: SeverityWarning, Message: msg, Items: items}
}

func TestLintSeverity(t *testing.T) {
	for _, committing := range []bool{false, true} {
		in := newFakeInput("platform/api/time.h", "third_party/foo/foo.h", "BUILD.gn", "util/std_util.cc")
		in.committing = committing
		in.SetFilesToSkip(defaultFilter)
		in.lint.count = 2
		results := checkLint(in, fakeOutput{})
		want := SeverityWarning
		if committing {
			want = SeverityError
		}
		assert.Equal(t, []Result{{
			Severity: want,
			Message:  "Changelist failed cpplint check.",
			Items:    []string{"a.h:1:  bad", "a.h:2:  bad"},
		}}, results)
		assert.Equal(t, []string{
			filepath.Join("/src", "platform", "api", "time.h"),
			filepath.Join("/src", "util", "std_util.cc"),
		}, in.lint.files)
		assert.Equal(t, 4, in.lint.opts.Verbosity)
		assert.Equal(t, []string{"-build/header_guard", "-whitespace/braces"}, in.lint.opts.Filters)
		assert.Len(t, in.lint.opts.ExtraChecks, 1)
		assert.Equal(t, "/src", in.lint.opts.Root)
	}
}

func TestLintClean(t *testing.T) {
	in := newFakeInput("platform/api/time.h")
	assert.Empty(t, checkLint(in, fakeOutput{}))

	in = newFakeInput("BUILD.gn", "README.md")
	assert.Empty(t, checkLint(in, fakeOutput{}))
	assert.Nil(t, in.lint.files)

	in = newFakeInput("platform/api/time.h")
	in.lint.err = errors.New("boom")
	assert.Equal(t, []Result{{Severity: SeverityError, Message: "Failed to run cpplint: boom"}},
		checkLint(in, fakeOutput{}))
}

func TestCheckDeps(t *testing.T) {
	in := newFakeInput("platform/api/time.h")
	in.deps.violations = []string{
		`platform/api/time.h:7: illegal include "cast/common/foo.h", because of "-cast" from platform/DEPS`,
		`platform/api/time.h:8: illegal include "util/bar.h", no rule allowing it`,
	}
	assert.Equal(t, []Result{
		{Severity: SeverityError, Message: in.deps.violations[0]},
		{Severity: SeverityError, Message: in.deps.violations[1]},
	}, checkDeps(in, fakeOutput{}))
	assert.Equal(t, "/src", in.deps.root)

	in.deps.violations = nil
	in.deps.err = errors.New("bad DEPS")
	assert.Equal(t, []Result{{Severity: SeverityError, Message: "Failed to run checkdeps: bad DEPS"}},
		checkDeps(in, fakeOutput{}))
}

func TestUploadAndCommit(t *testing.T) {
	files := []string{"platform/api/time.h", "third_party/abseil/absl.h", "out/Default/foo.h"}

	upload := newFakeInput(files...)
	upload.lint.count = 1
	uploadResults := CheckChangeOnUpload(upload, fakeOutput{})

	commit := newFakeInput(files...)
	commit.committing = true
	commit.lint.count = 1
	commitResults := CheckChangeOnCommit(commit, fakeOutput{})

	common := []string{"pan-project", "cr-eol", "inclusive", "todo", "clang-format", "gn-format"}
	assert.Equal(t, common, commit.canned.calls)
	assert.Equal(t, append(common, "luci"), upload.canned.calls)
	assert.Equal(t, []string{filepath.Join("/src", "platform", "api", "time.h")}, upload.lint.files)

	require.Len(t, uploadResults, len(commitResults)+1)
	assert.Equal(t, Result{Severity: SeverityWarning, Message: "luci"}, uploadResults[len(uploadResults)-1])
	for i, res := range commitResults {
		if res.Message == "Changelist failed cpplint check." {
			assert.Equal(t, SeverityError, res.Severity)
			assert.Equal(t, SeverityWarning, uploadResults[i].Severity)
			continue
		}
		assert.Equal(t, res, uploadResults[i])
	}
	assert.True(t, HasErrors(commitResults))
	assert.False(t, HasErrors(uploadResults))
}

func TestPrint(t *testing.T) {
	buf := new(bytes.Buffer)
	Print(buf, nil)
	assert.Equal(t, "Presubmit checks passed.\n", buf.String())

	buf.Reset()
	Print(buf, []Result{
		{Severity: SeverityWarning, Message: "long line", Items: []string{"a.h:1", "a.h:2"}},
		{Severity: SeverityError, Message: "bad include"},
	})
	assert.Equal(t, `** Presubmit ERRORS **
bad include

** Presubmit Warnings **
long line
  a.h:1
  a.h:2

`, buf.String())
}
