// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package canned implements the generic change checks shared by all projects:
// line hygiene, license headers, inclusive language, TODO owners,
// clang-format/gn formatting and LUCI config validation.
package canned

import (
	"context"
	"path"
	"runtime"
	"time"

	"github.com/google/osp-presubmit/pkg/luci"
	"github.com/google/osp-presubmit/pkg/presubmit"
)

type Config struct {
	MaxLineLength int `json:"max_line_length" yaml:"max_line_length"`
	// LicenseHeader is a regexp that must match one of the first lines of new source files.
	LicenseHeader string `json:"license_header" yaml:"license_header"`
	// InclusiveLanguageExempt are doublestar globs of files the inclusive language check skips.
	InclusiveLanguageExempt []string `json:"inclusive_language_exempt" yaml:"inclusive_language_exempt"`
	ClangFormat             string   `json:"clang_format" yaml:"clang_format"`
	GN                      string   `json:"gn" yaml:"gn"`
	// FormatProcs limits the number of concurrently running formatters.
	FormatProcs int `json:"format_procs" yaml:"format_procs"`
	// Timeouts are integer nanoseconds in JSON configs, YAML configs also accept "1m" strings.
	FormatTimeout time.Duration `json:"format_timeout" yaml:"format_timeout"`
	LUCIConfigSet string        `json:"luci_config_set" yaml:"luci_config_set"`
	// LUCIConfigDir is the root of the config set in the repository,
	// LUCIConfigFiles are doublestar globs relative to it.
	LUCIConfigDir   string        `json:"luci_config_dir" yaml:"luci_config_dir"`
	LUCIConfigFiles []string      `json:"luci_config_files" yaml:"luci_config_files"`
	LUCITimeout     time.Duration `json:"luci_timeout" yaml:"luci_timeout"`
}

func DefaultConfig() Config {
	return Config{
		MaxLineLength: 80,
		LicenseHeader: `Copyright (\(c\) )?\d{4} The [\w ]+ Authors\. All rights reserved\.`,
		InclusiveLanguageExempt: []string{
			"infra/config/**",
			"**/*.pyl",
		},
		ClangFormat:     "clang-format",
		GN:              "gn",
		FormatProcs:     runtime.NumCPU(),
		FormatTimeout:   time.Minute,
		LUCIConfigSet:   "projects/openscreen",
		LUCIConfigDir:   "infra/config/global/generated",
		LUCIConfigFiles: []string{"**/*.cfg"},
		LUCITimeout:     time.Minute,
	}
}

// ConfigValidator is implemented by *luci.Client.
type ConfigValidator interface {
	Validate(ctx context.Context, configSet string, files []luci.File) ([]luci.Message, error)
}

// Library implements presubmit.CannedChecks.
type Library struct {
	cfg       Config
	validator ConfigValidator
}

var _ presubmit.CannedChecks = (*Library)(nil)

// New creates a check library. validator may be nil, then LUCI config validation
// is reported as unavailable.
func New(cfg Config, validator ConfigValidator) *Library {
	if cfg.MaxLineLength <= 0 {
		cfg.MaxLineLength = 80
	}
	if cfg.FormatProcs <= 0 {
		cfg.FormatProcs = 1
	}
	if cfg.FormatTimeout <= 0 {
		cfg.FormatTimeout = time.Minute
	}
	if cfg.LUCITimeout <= 0 {
		cfg.LUCITimeout = time.Minute
	}
	return &Library{
		cfg:       cfg,
		validator: validator,
	}
}

// resultFunc picks the severity of problems that block commits but are advisory on upload.
func resultFunc(in presubmit.Input, out presubmit.Output) func(string, ...string) presubmit.Result {
	if in.IsCommitting() {
		return out.Error
	}
	return out.Warning
}

var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".der": true, ".pem": true, ".bin": true, ".pdf": true, ".zip": true,
}

func isText(file presubmit.AffectedFile) bool {
	return !binaryExtensions[path.Ext(file.LocalPath())]
}

// forEachChangedLine calls fn for every added or modified line of text files.
func forEachChangedLine(in presubmit.Input, fn func(file presubmit.AffectedFile, line presubmit.ChangedLine)) {
	for _, file := range in.AffectedFiles(isText) {
		for _, line := range file.ChangedLines() {
			fn(file, line)
		}
	}
}
