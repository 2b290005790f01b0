// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package cpplint

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

type fileCheck func(st *state, filename string, lines *CleansedLines, report ErrorFunc)

type lineCheck func(filename string, lines *CleansedLines, linenum int, report ErrorFunc)

var fileChecks = []fileCheck{
	checkCopyright,
	checkHeaderGuard,
}

var lineChecks = []lineCheck{
	checkTabs,
	checkTrailingWhitespace,
	checkBraces,
	checkElse,
	checkComments,
	checkIntTypes,
	checkUsingNamespace,
}

func checkCopyright(st *state, filename string, lines *CleansedLines, report ErrorFunc) {
	const searchLines = 10
	for i := 0; i < lines.NumLines() && i < searchLines; i++ {
		if strings.Contains(strings.ToLower(lines.Raw[i]), "copyright") {
			return
		}
	}
	report(0, "legal/copyright", 5,
		`No copyright message found.  You should have a line: "Copyright [year] <Copyright Owner>"`)
}

var (
	ifndefRe     = regexp.MustCompile(`^\s*#\s*ifndef\s+(\w+)`)
	defineRe     = regexp.MustCompile(`^\s*#\s*define\s+(\w+)`)
	pragmaOnceRe = regexp.MustCompile(`^\s*#\s*pragma\s+once\b`)
)

// HeaderGuard returns the expected include guard for a header, e.g. "PLATFORM_API_TIME_H_"
// for platform/api/time.h relative to root.
func HeaderGuard(root, filename string) string {
	rel := filename
	if root != "" {
		if r, err := filepath.Rel(root, filename); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	guard := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return '_'
	}, rel)
	return guard + "_"
}

func checkHeaderGuard(st *state, filename string, lines *CleansedLines, report ErrorFunc) {
	if !IsHeaderFile(filename) {
		return
	}
	want := HeaderGuard(st.opts.Root, filename)
	for i, line := range lines.Lines {
		if pragmaOnceRe.MatchString(line) {
			return
		}
		match := ifndefRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if match[1] != want {
			report(i, "build/header_guard", 5,
				fmt.Sprintf("#ifndef header guard has wrong style, please use: %v", want))
			return
		}
		if i+1 >= lines.NumLines() {
			break
		}
		if def := defineRe.FindStringSubmatch(lines.Lines[i+1]); def == nil || def[1] != want {
			report(i+1, "build/header_guard", 5,
				fmt.Sprintf("#ifndef and #define don't match, suggested CPP variable is: %v", want))
		}
		return
	}
	report(0, "build/header_guard", 5,
		fmt.Sprintf("No #ifndef header guard found, suggested CPP variable is: %v", want))
}

func checkTabs(filename string, lines *CleansedLines, linenum int, report ErrorFunc) {
	if strings.Contains(lines.Raw[linenum], "\t") {
		report(linenum, "whitespace/tab", 1, "Tab found; better to use spaces")
	}
}

func checkTrailingWhitespace(filename string, lines *CleansedLines, linenum int, report ErrorFunc) {
	raw := lines.Raw[linenum]
	if raw != strings.TrimRight(raw, " \t") {
		report(linenum, "whitespace/end_of_line", 4,
			"Line ends in whitespace.  Consider deleting these extra spaces.")
	}
}

var (
	parenBraceRe = regexp.MustCompile(`\)\{`)
	braceElseRe  = regexp.MustCompile(`\}else\b`)
	elseBraceRe  = regexp.MustCompile(`\belse\{`)
	elseLineRe   = regexp.MustCompile(`^\s*else\b`)
	closeBraceRe = regexp.MustCompile(`\}\s*$`)
)

func checkBraces(filename string, lines *CleansedLines, linenum int, report ErrorFunc) {
	line := lines.Elided[linenum]
	if parenBraceRe.MatchString(line) || elseBraceRe.MatchString(line) {
		report(linenum, "whitespace/braces", 5, "Missing space before {")
	}
	if braceElseRe.MatchString(line) {
		report(linenum, "whitespace/braces", 5, "Missing space before else")
	}
}

func checkElse(filename string, lines *CleansedLines, linenum int, report ErrorFunc) {
	if linenum == 0 || !elseLineRe.MatchString(lines.Elided[linenum]) {
		return
	}
	for prev := linenum - 1; prev >= 0; prev-- {
		if strings.TrimSpace(lines.Elided[prev]) == "" {
			continue
		}
		if closeBraceRe.MatchString(lines.Elided[prev]) {
			report(linenum, "whitespace/newline", 4,
				"An else should appear on the same line as the preceding }")
		}
		return
	}
}

var (
	todoRe          = regexp.MustCompile(`^//(\s*)TODO(\(.+?\))?(:?)(\s|$)?`)
	commentSpacerRe = regexp.MustCompile(`^//[^ /!<]`)
)

func checkComments(filename string, lines *CleansedLines, linenum int, report ErrorFunc) {
	raw := lines.Raw[linenum]
	pos := lines.CommentPos[linenum]
	if pos == -1 || !strings.HasPrefix(raw[pos:], "//") {
		return
	}
	comment := raw[pos:]
	if strings.TrimSpace(lines.Lines[linenum]) != "" && (pos < 2 || raw[pos-2:pos] != "  ") {
		report(linenum, "whitespace/comments", 2, "At least two spaces is best between code and comments")
	}
	if match := todoRe.FindStringSubmatch(comment); match != nil {
		if len(match[1]) > 1 {
			report(linenum, "whitespace/todo", 2, "Too many spaces before TODO")
		}
		if match[2] == "" {
			report(linenum, "readability/todo", 2,
				`Missing username in TODO; it should look like "// TODO(my_username): Stuff."`)
		}
		if match[3] == ":" && match[4] == "" && len(comment) > len(match[0]) {
			report(linenum, "whitespace/todo", 2, "TODO(my_username) should be followed by a space")
		}
	}
	if commentSpacerRe.MatchString(comment) && !strings.HasPrefix(comment, "//--") {
		report(linenum, "whitespace/comments", 4, "Should have a space between // and comment")
	}
}

var (
	intTypeRe    = regexp.MustCompile(`\b(short|long long|long)\b(\s+int)?\s+[A-Za-z_]\w*\s*[=;,)\[]`)
	longDoubleRe = regexp.MustCompile(`\blong\s+double\b`)
	usingNsRe    = regexp.MustCompile(`^\s*using\s+namespace\s+\w`)
)

func checkIntTypes(filename string, lines *CleansedLines, linenum int, report ErrorFunc) {
	line := lines.Elided[linenum]
	match := intTypeRe.FindStringSubmatch(line)
	if match == nil || longDoubleRe.MatchString(line) {
		return
	}
	typ := match[1]
	if typ != "short" {
		typ = "long"
	}
	width := map[string]string{"short": "int16_t", "long": "int64_t"}[typ]
	report(linenum, "runtime/int", 4,
		fmt.Sprintf("Use %v/etc, rather than the C type %v", width, match[1]))
}

func checkUsingNamespace(filename string, lines *CleansedLines, linenum int, report ErrorFunc) {
	if usingNsRe.MatchString(lines.Elided[linenum]) {
		report(linenum, "build/namespaces", 5,
			"Do not use namespace using-directives.  Use using-declarations instead.")
	}
}
