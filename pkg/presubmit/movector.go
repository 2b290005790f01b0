// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package presubmit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/osp-presubmit/pkg/cpplint"
)

var (
	// Matches Name(Name&& other) followed by the text up to the next '{', ';' or '='.
	// RE2 has no back-references, so the two names are compared separately.
	moveCtorRe = regexp.MustCompile(`\b(\w+)\s*\(\s*(\w+)\s*&&\s*\w*\s*\)([^{;=]*)[{;=]`)
	noexceptRe = regexp.MustCompile(`\bnoexcept\b`)
)

type moveCtor struct {
	className     string
	text          string
	lacksNoexcept bool
}

func matchMoveConstructor(line string) *moveCtor {
	for start := 0; start < len(line); {
		m := moveCtorRe.FindStringSubmatchIndex(line[start:])
		if m == nil {
			return nil
		}
		if name := line[start+m[2] : start+m[3]]; name == line[start+m[4]:start+m[5]] {
			return &moveCtor{
				className:     name,
				text:          strings.TrimSpace(line[start+m[0] : start+m[1]]),
				lacksNoexcept: !noexceptRe.MatchString(line[start+m[6] : start+m[7]]),
			}
		}
		// The tail of a rejected candidate may hide a real constructor, so rescan right after its name.
		start += m[3]
	}
	return nil
}

// CheckNoexceptOnMove is a cpplint extra check that requires move constructors declared
// in headers to be noexcept. Definitions in .cc files are not checked, and a declaration
// split over several lines is not recognized.
func CheckNoexceptOnMove(filename string, lines *cpplint.CleansedLines, linenum int, report cpplint.ErrorFunc) {
	if !strings.HasSuffix(filename, ".h") {
		return
	}
	ctor := matchMoveConstructor(lines.Elided[linenum])
	if ctor == nil || !ctor.lacksNoexcept {
		return
	}
	report(linenum, "build/noexcept", 4,
		fmt.Sprintf("Move constructor of %v is not declared noexcept: %v", ctor.className, ctor.text))
}
