// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package host

import (
	"fmt"

	"github.com/google/osp-presubmit/pkg/canned"
	"github.com/google/osp-presubmit/pkg/config"
	"github.com/google/osp-presubmit/pkg/presubmit"
)

type Config struct {
	// Base is the revision the change is compared against.
	Base string `json:"base" yaml:"base"`
	// SourceExtensions select files returned by AffectedSourceFiles.
	SourceExtensions []string `json:"source_extensions" yaml:"source_extensions"`
	// FilesToSkip are regexps of root-relative paths that are not reported as affected.
	// This is the host default list, checks may replace it with SetFilesToSkip.
	FilesToSkip []string `json:"files_to_skip" yaml:"files_to_skip"`
	// ExtraFilesToSkip are skipped in addition to whatever list is currently installed.
	ExtraFilesToSkip []string      `json:"extra_files_to_skip" yaml:"extra_files_to_skip"`
	Canned           canned.Config `json:"canned" yaml:"canned"`
	// Pushgateway is the Prometheus pushgateway URL for run metrics, optional.
	Pushgateway string `json:"pushgateway" yaml:"pushgateway"`
}

func DefaultConfig() *Config {
	return &Config{
		Base: "origin/main",
		SourceExtensions: []string{
			".c", ".cc", ".cpp", ".cxx", ".h", ".hh", ".hpp", ".inc", ".m", ".mm",
			".gn", ".gni", ".proto", ".py", ".sh", ".java", ".js",
		},
		FilesToSkip: []string{
			`(^|[\\/])\.git[\\/]`,
			`.+\.rej$`,
			`.+\.orig$`,
		},
		Canned: canned.DefaultConfig(),
	}
}

// LoadConfig loads a JSON or YAML config file on top of the defaults.
// An empty filename returns the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	if err := config.LoadFile(filename, cfg); err != nil {
		return nil, err
	}
	if _, err := skipFilter("files_to_skip", cfg.FilesToSkip); err != nil {
		return nil, err
	}
	if _, err := skipFilter("extra_files_to_skip", cfg.ExtraFilesToSkip); err != nil {
		return nil, err
	}
	return cfg, nil
}

func skipFilter(name string, patterns []string) (*presubmit.PathFilter, error) {
	var skip []presubmit.SkipPattern
	for _, p := range patterns {
		skip = append(skip, presubmit.SkipPattern{Match: p})
	}
	filter, err := presubmit.NewPathFilter(skip)
	if err != nil {
		return nil, fmt.Errorf("bad %v: %w", name, err)
	}
	return filter, nil
}
