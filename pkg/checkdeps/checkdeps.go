// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package checkdeps verifies that C++ sources only include headers permitted
// by the include_rules of DEPS files in their directory and its parents.
package checkdeps

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/osp-presubmit/pkg/log"
)

type RuleKind byte

const (
	Allow     RuleKind = '+'
	Disallow  RuleKind = '-'
	Temporary RuleKind = '!'
)

type Rule struct {
	Kind RuleKind
	// Path is a slash-separated directory or file prefix, relative to the root.
	Path string
	// Source describes where the rule comes from, e.g. "util/DEPS".
	Source string
}

func (r *Rule) String() string {
	return fmt.Sprintf("%c%v", r.Kind, r.Path)
}

func (r *Rule) applies(include string) bool {
	return r.Path == "" || include == r.Path || strings.HasPrefix(include, r.Path+"/")
}

func parseRule(s, source string) (Rule, error) {
	if len(s) < 2 {
		return Rule{}, fmt.Errorf("%v: bad rule %q", source, s)
	}
	kind := RuleKind(s[0])
	if kind != Allow && kind != Disallow && kind != Temporary {
		return Rule{}, fmt.Errorf("%v: rule %q must start with +, - or !", source, s)
	}
	return Rule{Kind: kind, Path: strings.TrimSuffix(s[1:], "/"), Source: source}, nil
}

type Violation struct {
	// File is relative to the checker root, in slash notation.
	File    string
	Line    int
	Include string
	// Rule is the rule that disallowed the include, nil if no rule allowed it.
	Rule *Rule
}

func (v *Violation) String() string {
	reason := "no rule allowing it"
	if v.Rule != nil {
		reason = fmt.Sprintf("because of %q from %v", v.Rule.String(), v.Rule.Source)
	}
	return fmt.Sprintf("%v:%v: illegal include %q, %v", v.File, v.Line, v.Include, reason)
}

type specificRules struct {
	re    *regexp.Regexp
	rules []Rule
}

// dirRules hold rules in precedence order, the most recently added rule first.
type dirRules struct {
	rules    []Rule
	specific []specificRules
}

// addRule puts rule in front of rules and drops the rules it overrides:
// those for the same path and for any path below it.
func addRule(rules []Rule, rule Rule) []Rule {
	res := []Rule{rule}
	for _, r := range rules {
		if !rule.applies(r.Path) {
			res = append(res, r)
		}
	}
	return res
}

// Checker resolves DEPS rules under root. It caches parsed DEPS files,
// so it must not be reused after DEPS files change.
type Checker struct {
	root  string
	cache map[string]*dirRules
}

func NewChecker(root string) *Checker {
	return &Checker{
		root:  root,
		cache: make(map[string]*dirRules),
	}
}

var checkedExtensions = map[string]bool{
	".h": true, ".hh": true, ".c": true, ".cc": true, ".cpp": true, ".mm": true,
}

// CheckFiles checks includes of the given files (absolute or relative to the root).
// Files with non C/C++ extensions are skipped.
func (c *Checker) CheckFiles(files []string) ([]Violation, error) {
	var res []Violation
	for _, file := range files {
		if !checkedExtensions[filepath.Ext(file)] {
			continue
		}
		violations, err := c.CheckFile(file)
		if err != nil {
			return nil, err
		}
		res = append(res, violations...)
	}
	return res, nil
}

var includeRe = regexp.MustCompile(`^\s*#\s*include\s+"([^"]+)"`)

func (c *Checker) CheckFile(file string) ([]Violation, error) {
	rel, abs := c.paths(file)
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("checkdeps: %w", err)
	}
	rules, err := c.RulesForFile(rel)
	if err != nil {
		return nil, err
	}
	var res []Violation
	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(nil, 1<<20)
	for line := 1; s.Scan(); line++ {
		match := includeRe.FindStringSubmatch(s.Text())
		if match == nil {
			continue
		}
		include := path.Clean(match[1])
		// Includes without a directory refer to the same directory.
		if !strings.Contains(include, "/") {
			continue
		}
		rule := matchRule(rules, include)
		if rule != nil && rule.Kind != Disallow {
			continue
		}
		log.Logf(2, "checkdeps: %v:%v: %q rejected by %v", rel, line, include, rule)
		res = append(res, Violation{
			File:    rel,
			Line:    line,
			Include: include,
			Rule:    rule,
		})
	}
	return res, s.Err()
}

// matchRule returns the first rule applying to the include.
func matchRule(rules []Rule, include string) *Rule {
	for i := range rules {
		if rules[i].applies(include) {
			return &rules[i]
		}
	}
	return nil
}

func (c *Checker) paths(file string) (rel, abs string) {
	if filepath.IsAbs(file) {
		abs = file
		if r, err := filepath.Rel(c.root, file); err == nil {
			rel = r
		}
	} else {
		rel = file
		abs = filepath.Join(c.root, file)
	}
	return filepath.ToSlash(rel), abs
}

// RulesForFile returns the rules applying to the file (relative to the root, slash notation)
// in precedence order: specific_include_rules matching its name come before the general rules.
func (c *Checker) RulesForFile(rel string) ([]Rule, error) {
	dr, err := c.rulesForDir(path.Dir(rel))
	if err != nil {
		return nil, err
	}
	var rules []Rule
	base := path.Base(rel)
	for _, spec := range dr.specific {
		if spec.re.MatchString(base) {
			rules = append(rules, spec.rules...)
		}
	}
	return append(rules, dr.rules...), nil
}

func (c *Checker) rulesForDir(dir string) (*dirRules, error) {
	if dir == "." {
		dir = ""
	}
	if dr := c.cache[dir]; dr != nil {
		return dr, nil
	}
	deps, depsName, err := c.loadDeps(dir)
	if err != nil {
		return nil, err
	}
	dr := new(dirRules)
	if dir != "" && (deps == nil || !deps.NoParent) {
		parent := path.Dir(dir)
		pr, err := c.rulesForDir(parent)
		if err != nil {
			return nil, err
		}
		dr.rules = append(dr.rules, pr.rules...)
		dr.specific = append(dr.specific, pr.specific...)
	}
	if dir != "" {
		dr.rules = addRule(dr.rules, Rule{Kind: Allow, Path: dir, Source: "default rule for " + dir})
	}
	if deps != nil {
		for _, s := range deps.IncludeRules {
			rule, err := parseRule(s, depsName)
			if err != nil {
				return nil, err
			}
			dr.rules = addRule(dr.rules, rule)
		}
		var res []string
		for re := range deps.SpecificIncludeRules {
			res = append(res, re)
		}
		sort.Strings(res)
		for _, re := range res {
			compiled, err := regexp.Compile("^(?:" + re + ")")
			if err != nil {
				return nil, fmt.Errorf("%v: bad specific_include_rules regexp %q: %w", depsName, re, err)
			}
			idx := len(dr.specific)
			for i, spec := range dr.specific {
				if spec.re.String() == compiled.String() {
					idx = i
				}
			}
			if idx == len(dr.specific) {
				dr.specific = append(dr.specific, specificRules{re: compiled})
			}
			for _, s := range deps.SpecificIncludeRules[re] {
				rule, err := parseRule(s, depsName)
				if err != nil {
					return nil, err
				}
				dr.specific[idx].rules = addRule(dr.specific[idx].rules, rule)
			}
		}
	}
	c.cache[dir] = dr
	return dr, nil
}

func (c *Checker) loadDeps(dir string) (*DepsFile, string, error) {
	name := path.Join(dir, "DEPS")
	data, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil, name, nil
	}
	if err != nil {
		return nil, name, fmt.Errorf("checkdeps: %w", err)
	}
	deps, err := ParseDeps(data)
	if err != nil {
		return nil, name, fmt.Errorf("%v: %w", name, err)
	}
	return deps, name, nil
}
