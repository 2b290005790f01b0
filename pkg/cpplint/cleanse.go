// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package cpplint

import (
	"strings"
)

// CleansedLines holds three views of a source file, all with the same number of lines:
// Raw is the file as is, Lines has comments removed,
// Elided additionally has string and character literal contents collapsed to empty quotes.
type CleansedLines struct {
	Raw    []string
	Lines  []string
	Elided []string
	// CommentPos is the byte offset of a // or /* comment start in the raw line, or -1.
	CommentPos []int
}

func (cl *CleansedLines) NumLines() int {
	return len(cl.Raw)
}

// Cleanse splits data into lines and computes the cleansed views.
// Block comments spanning several lines are blanked out.
func Cleanse(data []byte) *CleansedLines {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	raw := strings.Split(text, "\n")
	if len(raw) != 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	cl := &CleansedLines{
		Raw:        raw,
		Lines:      make([]string, len(raw)),
		Elided:     make([]string, len(raw)),
		CommentPos: make([]int, len(raw)),
	}
	inBlock := false
	for i, line := range raw {
		cl.Lines[i], cl.Elided[i], cl.CommentPos[i], inBlock = cleanseLine(line, inBlock)
	}
	return cl
}

func cleanseLine(line string, inBlock bool) (code, elided string, commentPos int, stillInBlock bool) {
	var codeBuf, elidedBuf strings.Builder
	commentPos = -1
	for i := 0; i < len(line); i++ {
		if inBlock {
			end := strings.Index(line[i:], "*/")
			if end == -1 {
				break
			}
			i += end + 1
			inBlock = false
			continue
		}
		c := line[i]
		switch {
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			if commentPos == -1 {
				commentPos = i
			}
			return trimCode(codeBuf.String()), trimCode(elidedBuf.String()), commentPos, false
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			if commentPos == -1 {
				commentPos = i
			}
			inBlock = true
			i++
		case c == '"' || c == '\'' && !isDigitSeparator(line, i):
			end := literalEnd(line, i)
			codeBuf.WriteString(line[i:end])
			elidedBuf.WriteByte(c)
			elidedBuf.WriteByte(c)
			i = end - 1
		default:
			codeBuf.WriteByte(c)
			elidedBuf.WriteByte(c)
		}
	}
	return trimCode(codeBuf.String()), trimCode(elidedBuf.String()), commentPos, inBlock
}

// literalEnd returns the index after the closing quote of the literal starting at start,
// or len(line) if the literal is not terminated on this line.
func literalEnd(line string, start int) int {
	quote := line[start]
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(line)
}

// isDigitSeparator reports whether the quote at i is a C++14 digit separator (1'000'000).
func isDigitSeparator(line string, i int) bool {
	return i > 0 && i+1 < len(line) && isHexDigit(line[i-1]) && isHexDigit(line[i+1])
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func trimCode(s string) string {
	return strings.TrimRight(s, " \t")
}
