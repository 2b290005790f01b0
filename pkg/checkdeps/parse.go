// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package checkdeps

import (
	"fmt"
	"strings"
)

// DepsFile is the part of a DEPS file relevant for include checking.
type DepsFile struct {
	IncludeRules []string
	// SpecificIncludeRules maps a file name regexp to extra rules for matching files.
	SpecificIncludeRules map[string][]string
	// NoParent stops inheritance of rules from parent directories.
	NoParent bool
}

// ParseDeps parses the Python literal subset used by DEPS files:
//
//	include_rules = [
//	  "+util",  # comment
//	  "-platform/impl",
//	]
//	specific_include_rules = {
//	  ".*_unittest\.cc": ["+gtest"],
//	}
//	noparent = True
//
// Unknown top-level variables (deps, vars, hooks, ...) are parsed and ignored.
func ParseDeps(data []byte) (*DepsFile, error) {
	p := &parser{s: string(data), line: 1}
	res := &DepsFile{}
	for {
		p.skipSpace()
		if p.eof() {
			return res, nil
		}
		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected variable name")
		}
		p.skipSpace()
		if !p.consume('=') {
			return nil, p.errorf("expected '=' after %v", name)
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		switch name {
		case "include_rules":
			if res.IncludeRules, err = stringList(name, val); err != nil {
				return nil, err
			}
		case "specific_include_rules":
			dict, ok := val.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("specific_include_rules is not a dict")
			}
			res.SpecificIncludeRules = make(map[string][]string)
			for re, rules := range dict {
				if res.SpecificIncludeRules[re], err = stringList(name+"["+re+"]", rules); err != nil {
					return nil, err
				}
			}
		case "noparent":
			b, ok := val.(bool)
			if !ok {
				return nil, fmt.Errorf("noparent is not a bool")
			}
			res.NoParent = b
		}
	}
}

func stringList(name string, val any) ([]string, error) {
	list, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("%v is not a list", name)
	}
	var res []string
	for _, elem := range list {
		str, ok := elem.(string)
		if !ok {
			return nil, fmt.Errorf("%v contains a non-string element", name)
		}
		res = append(res, str)
	}
	return res, nil
}

type parser struct {
	s    string
	pos  int
	line int
}

func (p *parser) errorf(msg string, args ...any) error {
	return fmt.Errorf("DEPS:%v: %v", p.line, fmt.Sprintf(msg, args...))
}

func (p *parser) eof() bool {
	return p.pos >= len(p.s)
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch c := p.s[p.pos]; {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '#':
			for !p.eof() && p.s[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) consume(c byte) bool {
	if !p.eof() && p.s[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.s[p.pos]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9' || p.pos == start) {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

// value parses a term optionally followed by "+ term" concatenations.
// Concatenation of non-strings (e.g. Var("root") + "/foo") yields nil.
func (p *parser) value() (any, error) {
	val, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		if !p.consume('+') {
			return val, nil
		}
		next, err := p.term()
		if err != nil {
			return nil, err
		}
		left, ok1 := val.(string)
		right, ok2 := next.(string)
		if ok1 && ok2 {
			val = left + right
		} else {
			val = nil
		}
	}
}

func (p *parser) term() (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of file")
	}
	if p.rawPrefix() {
		p.pos++
	}
	switch c := p.s[p.pos]; c {
	case '"', '\'':
		return p.str()
	case '[':
		p.pos++
		return p.list()
	case '{':
		p.pos++
		return p.dict()
	}
	switch id := p.ident(); id {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "":
		return nil, p.errorf("unexpected character %q", p.s[p.pos])
	default:
		// Var("...") and other calls are not interpreted.
		p.skipSpace()
		if p.consume('(') {
			if _, err := p.list(')'); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

// rawPrefix reports whether the parser is at an r"..." string.
// Escapes are kept verbatim anyway, so raw strings need no special handling.
func (p *parser) rawPrefix() bool {
	return p.pos+1 < len(p.s) && p.s[p.pos] == 'r' && (p.s[p.pos+1] == '"' || p.s[p.pos+1] == '\'')
}

func (p *parser) str() (string, error) {
	quote := p.s[p.pos]
	p.pos++
	var sb strings.Builder
	for !p.eof() {
		c := p.s[p.pos]
		p.pos++
		switch c {
		case quote:
			return sb.String(), nil
		case '\n':
			return "", p.errorf("unterminated string")
		case '\\':
			if p.eof() {
				return "", p.errorf("unterminated string")
			}
			next := p.s[p.pos]
			p.pos++
			if next != quote && next != '\\' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(next)
		default:
			sb.WriteByte(c)
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) list(end ...byte) ([]any, error) {
	closing := byte(']')
	if len(end) != 0 {
		closing = end[0]
	}
	var res []any
	for {
		p.skipSpace()
		if p.consume(closing) {
			return res, nil
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		res = append(res, val)
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if !p.consume(closing) {
			return nil, p.errorf("expected ',' or '%c'", closing)
		}
		return res, nil
	}
}

func (p *parser) dict() (map[string]any, error) {
	res := make(map[string]any)
	for {
		p.skipSpace()
		if p.consume('}') {
			return res, nil
		}
		if p.rawPrefix() {
			p.pos++
		}
		if p.eof() || p.s[p.pos] != '"' && p.s[p.pos] != '\'' {
			return nil, p.errorf("expected string key")
		}
		key, err := p.str()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(':') {
			return nil, p.errorf("expected ':' after %q", key)
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		res[key] = val
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if !p.consume('}') {
			return nil, p.errorf("expected ',' or '}'")
		}
		return res, nil
	}
}
