// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package presubmit

import (
	"fmt"
	"regexp"
)

// SkipPattern excludes paths matching Match unless they also match Except.
// RE2 has no look-behind, so exceptions are expressed as a separate regexp.
type SkipPattern struct {
	Match  string
	Except string
}

// ExcludedPaths are skipped by all checks.
var ExcludedPaths = []SkipPattern{
	// All of third_party/ except for the BUILD.gn files we maintain.
	{Match: `^third_party[\\/]`, Except: `(^|[\\/])BUILD\.gn$`},
	{Match: `^third_party[\\/]chromium_quic[\\/](src|build)[\\/]`},
	// Output directories, just in case.
	{Match: `(^|[\\/])Debug[\\/]`},
	{Match: `(^|[\\/])Release[\\/]`},
	{Match: `(^|[\\/])xcodebuild[\\/]`},
	{Match: `(^|[\\/])out[\\/]`},
	// There is no point in processing a patch file.
	{Match: `.+\.diff$`},
	{Match: `.+\.patch$`},
}

var defaultFilter = MustPathFilter(ExcludedPaths)

type compiledPattern struct {
	match  *regexp.Regexp
	except *regexp.Regexp
}

// PathFilter is a compiled list of skip patterns.
type PathFilter struct {
	patterns []compiledPattern
}

func NewPathFilter(patterns []SkipPattern) (*PathFilter, error) {
	f := new(PathFilter)
	for _, p := range patterns {
		match, err := regexp.Compile(p.Match)
		if err != nil {
			return nil, fmt.Errorf("bad skip pattern %q: %w", p.Match, err)
		}
		cp := compiledPattern{match: match}
		if p.Except != "" {
			if cp.except, err = regexp.Compile(p.Except); err != nil {
				return nil, fmt.Errorf("bad skip exception %q: %w", p.Except, err)
			}
		}
		f.patterns = append(f.patterns, cp)
	}
	return f, nil
}

func MustPathFilter(patterns []SkipPattern) *PathFilter {
	f, err := NewPathFilter(patterns)
	if err != nil {
		panic(err)
	}
	return f
}

// Excluded reports whether the root-relative path matches any of the patterns.
// A nil filter excludes nothing.
func (f *PathFilter) Excluded(path string) bool {
	if f == nil {
		return false
	}
	for _, p := range f.patterns {
		if p.match.MatchString(path) && (p.except == nil || !p.except.MatchString(path)) {
			return true
		}
	}
	return false
}

// Excluded reports whether path is excluded by ExcludedPaths.
func Excluded(path string) bool {
	return defaultFilter.Excluded(path)
}
