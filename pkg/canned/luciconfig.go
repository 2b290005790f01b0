// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package canned

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/osp-presubmit/pkg/log"
	"github.com/google/osp-presubmit/pkg/luci"
	"github.com/google/osp-presubmit/pkg/presubmit"
)

// CheckChangedLUCIConfigs sends changed files of the LUCI config set to the config
// service for validation. Service errors become errors, warnings become warnings.
func (lib *Library) CheckChangedLUCIConfigs(in presubmit.Input, out presubmit.Output) []presubmit.Result {
	files := in.AffectedFiles(func(file presubmit.AffectedFile) bool {
		return lib.luciConfigPath(file.LocalPath()) != ""
	})
	if len(files) == 0 {
		return nil
	}
	if lib.validator == nil {
		return []presubmit.Result{out.Warning(
			"LUCI config validation is not available, changed configs were not validated.")}
	}
	var configs []luci.File
	for _, file := range files {
		data, err := os.ReadFile(file.AbsolutePath())
		if err != nil {
			return []presubmit.Result{out.Error(fmt.Sprintf("Failed to read %v: %v", file.LocalPath(), err))}
		}
		configs = append(configs, luci.File{
			Path:    lib.luciConfigPath(file.LocalPath()),
			Content: data,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), lib.cfg.LUCITimeout)
	defer cancel()
	log.Logf(1, "validating %v LUCI configs in %v", len(configs), lib.cfg.LUCIConfigSet)
	msgs, err := lib.validator.Validate(ctx, lib.cfg.LUCIConfigSet, configs)
	if err != nil {
		return []presubmit.Result{out.Warning(fmt.Sprintf("Failed to validate LUCI configs: %v", err))}
	}
	var results []presubmit.Result
	for _, msg := range msgs {
		text := fmt.Sprintf("Config validation: %v", msg.Text)
		if msg.Path != "" {
			text = fmt.Sprintf("Config validation: %v: %v", msg.Path, msg.Text)
		}
		switch msg.Severity {
		case luci.SeverityError, luci.SeverityCritical:
			results = append(results, out.Error(text))
		case luci.SeverityWarning:
			results = append(results, out.Warning(text))
		}
	}
	return results
}

// luciConfigPath returns the path of file relative to the config set root,
// or "" if the file is not part of the config set.
func (lib *Library) luciConfigPath(file string) string {
	if lib.cfg.LUCIConfigDir == "" {
		return ""
	}
	rel, ok := strings.CutPrefix(file, path.Clean(lib.cfg.LUCIConfigDir)+"/")
	if !ok {
		return ""
	}
	for _, pattern := range lib.cfg.LUCIConfigFiles {
		if match, _ := doublestar.Match(pattern, rel); match {
			return rel
		}
	}
	return ""
}
