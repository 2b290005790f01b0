// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package cpplint

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/osp-presubmit/pkg/osutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanse(t *testing.T) {
	lines := Cleanse([]byte(`int a = 1;  // comment
const char* s = "a // b";
/* start
   middle
end */ int b;
char c = '"'; int d = 1'000;
x = "esc\"aped"; /* inline */ y();
`))
	assert.Equal(t, []string{
		"int a = 1;",
		`const char* s = "a // b";`,
		"",
		"",
		" int b;",
		`char c = '"'; int d = 1'000;`,
		`x = "esc\"aped";  y();`,
	}, lines.Lines)
	assert.Equal(t, []string{
		"int a = 1;",
		`const char* s = "";`,
		"",
		"",
		" int b;",
		`char c = ''; int d = 1'000;`,
		`x = "";  y();`,
	}, lines.Elided)
	assert.Equal(t, []int{12, -1, 0, -1, -1, -1, 17}, lines.CommentPos)
}

func lintData(t *testing.T, filename, data string, opts Options) []string {
	t.Helper()
	report, err := ProcessData(filename, []byte(data), opts)
	require.NoError(t, err)
	var res []string
	for _, e := range report.Errors {
		res = append(res, e.String())
	}
	return res
}

const copyright = "// Copyright 2026 The Authors. All rights reserved.\n"

func TestBuiltinChecks(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{
			name: "clean",
			data: copyright + "int Foo() {\n  return 1;  // one\n}\n",
		},
		{
			name: "copyright",
			data: "int x;\n",
			want: []string{`a.cc:1:  No copyright message found.  You should have a line: ` +
				`"Copyright [year] <Copyright Owner>"  [legal/copyright] [5]`},
		},
		{
			name: "tab and trailing whitespace",
			data: copyright + "\tint x; \n",
			want: []string{
				"a.cc:2:  Tab found; better to use spaces  [whitespace/tab] [1]",
				"a.cc:2:  Line ends in whitespace.  Consider deleting these extra spaces.  " +
					"[whitespace/end_of_line] [4]",
			},
		},
		{
			name: "braces",
			data: copyright + "if (x){\n} else{\n}else {\n}\n",
			want: []string{
				"a.cc:2:  Missing space before {  [whitespace/braces] [5]",
				"a.cc:3:  Missing space before {  [whitespace/braces] [5]",
				"a.cc:4:  Missing space before else  [whitespace/braces] [5]",
			},
		},
		{
			name: "else on new line",
			data: copyright + "if (x) {\n}\nelse {\n}\n",
			want: []string{
				"a.cc:4:  An else should appear on the same line as the preceding }  [whitespace/newline] [4]",
			},
		},
		{
			name: "comments",
			data: copyright + "int x; // one space\n//no space\n// TODO: fix\n// TODO(issues/43): fine\n",
			want: []string{
				"a.cc:2:  At least two spaces is best between code and comments  [whitespace/comments] [2]",
				"a.cc:3:  Should have a space between // and comment  [whitespace/comments] [4]",
				`a.cc:4:  Missing username in TODO; it should look like "// TODO(my_username): Stuff."  ` +
					"[readability/todo] [2]",
			},
		},
		{
			name: "int types",
			data: copyright + "short s;\nlong long l = 0;\nlong double d;\nint64_t ok;\n",
			want: []string{
				"a.cc:2:  Use int16_t/etc, rather than the C type short  [runtime/int] [4]",
				"a.cc:3:  Use int64_t/etc, rather than the C type long long  [runtime/int] [4]",
			},
		},
		{
			name: "using namespace",
			data: copyright + "using namespace std;\nusing std::string;\n",
			want: []string{
				"a.cc:2:  Do not use namespace using-directives.  Use using-declarations instead.  " +
					"[build/namespaces] [5]",
			},
		},
		{
			name: "nolint",
			data: copyright + "\tint x;  // NOLINT\n// NOLINTNEXTLINE(whitespace/tab)\n\tint y;\n" +
				"\tint z;  // NOLINT(runtime/int)\n",
			want: []string{
				"a.cc:5:  Tab found; better to use spaces  [whitespace/tab] [1]",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := lintData(t, "a.cc", test.data, Options{})
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestHeaderGuard(t *testing.T) {
	assert.Equal(t, "PLATFORM_API_TIME_H_", HeaderGuard("/src", "/src/platform/api/time.h"))
	assert.Equal(t, "UTIL_STD_UTIL_H_", HeaderGuard("", "util/std_util.h"))

	root := "/src"
	file := "/src/util/foo.h"
	opts := Options{Root: root}
	assert.Empty(t, lintData(t, file, copyright+"#ifndef UTIL_FOO_H_\n#define UTIL_FOO_H_\n#endif\n", opts))
	assert.Empty(t, lintData(t, file, copyright+"#pragma once\n", opts))
	assert.Equal(t, []string{
		"/src/util/foo.h:2:  #ifndef header guard has wrong style, please use: UTIL_FOO_H_  [build/header_guard] [5]",
	}, lintData(t, file, copyright+"#ifndef FOO_H\n#define FOO_H\n#endif\n", opts))
	assert.Equal(t, []string{
		"/src/util/foo.h:1:  No #ifndef header guard found, suggested CPP variable is: UTIL_FOO_H_  " +
			"[build/header_guard] [5]",
	}, lintData(t, file, copyright+"int x;\n", opts))
	// Legacy guard style can be switched off.
	opts.Filters = []string{"-build/header_guard"}
	assert.Empty(t, lintData(t, file, copyright+"int x;\n", opts))
}

func TestFiltersAndVerbosity(t *testing.T) {
	data := copyright + "\tif (x){ \n}\n"
	all := lintData(t, "a.cc", data, Options{})
	assert.Len(t, all, 3)

	got := lintData(t, "a.cc", data, Options{Verbosity: 4})
	assert.Len(t, got, 2, "tab has confidence 1")

	got = lintData(t, "a.cc", data, Options{Filters: []string{"-whitespace", "+whitespace/tab"}})
	assert.Equal(t, []string{"a.cc:2:  Tab found; better to use spaces  [whitespace/tab] [1]"}, got)

	_, err := ProcessData("a.cc", []byte(data), Options{Filters: []string{"whitespace"}})
	assert.Error(t, err)
}

func TestExtraChecks(t *testing.T) {
	var seen []int
	extra := func(filename string, lines *CleansedLines, linenum int, report ErrorFunc) {
		seen = append(seen, linenum)
		if strings.Contains(lines.Elided[linenum], "bad") {
			report(linenum, "custom/bad", 3, "bad found")
		}
	}
	out := new(bytes.Buffer)
	got := lintData(t, "a.cc", copyright+"int bad;\nconst char* s = \"bad\";\n", Options{
		ExtraChecks: []ExtraCheck{extra},
		Output:      out,
	})
	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, []string{"a.cc:2:  bad found  [custom/bad] [3]"}, got)
	assert.Equal(t, "a.cc:2:  bad found  [custom/bad] [3]\n", out.String())
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, osutil.FillDirectory(dir, map[string]string{
		"ok.cc":     copyright + "int x;\n",
		"bad.cc":    copyright + "int x; \n",
		"README.md": "\tnot C++ \n",
	}))
	files := []string{
		filepath.Join(dir, "ok.cc"),
		filepath.Join(dir, "bad.cc"),
		filepath.Join(dir, "README.md"),
		filepath.Join(dir, "missing.cc"),
	}
	report, err := ProcessFiles(files, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, report.ErrorCount())
	assert.Equal(t, "whitespace/end_of_line", report.Errors[0].Category)
	assert.Contains(t, report.Errors[1].Message, "Can't open for reading")

	// Every invocation starts from zero.
	report, err = ProcessFiles(files[:1], Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.ErrorCount())

	// Filters are validated the same way as for ProcessData, before any file is read.
	_, err = ProcessFiles(files, Options{Filters: []string{"+whitespace", "readability"}})
	assert.ErrorContains(t, err, `every filter must start with + or -, got "readability"`)
	report, err = ProcessFiles(files[:2], Options{Filters: []string{"-whitespace"}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.ErrorCount())
}
