// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package host

import (
	"fmt"

	"github.com/google/osp-presubmit/pkg/stats"
)

var (
	statFiles = stats.Create("changed files", "Number of files in the change, including deleted and skipped",
		stats.Console, stats.Prometheus("presubmit_changed_files"))
	statErrors = stats.Create("errors", "Number of error results",
		stats.Console, stats.Prometheus("presubmit_errors"))
	statWarnings = stats.Create("warnings", "Number of warning results",
		stats.Console, stats.Prometheus("presubmit_warnings"))
	statLintErrors = stats.Create("cpplint errors", "Number of errors reported by cpplint",
		stats.Prometheus("presubmit_cpplint_errors"))
	statLintTime = stats.Create("cpplint time", "Duration of a cpplint invocation",
		stats.Distribution{}, stats.Prometheus("presubmit_cpplint_ms"),
		func(v int) string { return fmt.Sprintf("%v ms", v) })
	statDepsViolations = stats.Create("checkdeps violations", "Number of illegal includes",
		stats.Prometheus("presubmit_checkdeps_violations"))
)
