// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// osp-presubmit runs the presubmit checks for the change between a base revision and the working tree.
//
// Usage:
//
//	osp-presubmit -root ./openscreen [-upload | -commit] [-base origin/main] [-config presubmit.yaml]
//
// The tool exits with status 1 if any error results are reported (or any warnings with -strict).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/osp-presubmit/pkg/canned"
	"github.com/google/osp-presubmit/pkg/host"
	"github.com/google/osp-presubmit/pkg/log"
	"github.com/google/osp-presubmit/pkg/luci"
	"github.com/google/osp-presubmit/pkg/presubmit"
	"github.com/google/osp-presubmit/pkg/stats"
	"github.com/google/osp-presubmit/pkg/tool"
	"github.com/google/osp-presubmit/pkg/vcs"
	"github.com/google/uuid"
)

var (
	flagRoot        = flag.String("root", ".", "path to the checkout")
	flagBase        = flag.String("base", "", "base revision of the change (overrides config)")
	flagUpload      = flag.Bool("upload", false, "run the upload checks")
	flagCommit      = flag.Bool("commit", false, "run the commit checks")
	flagConfig      = flag.String("config", "", "JSON or YAML config file")
	flagJSON        = flag.Bool("json", false, "print results as JSON")
	flagStrict      = flag.Bool("strict", false, "fail on warnings too")
	flagPushgateway = flag.String("pushgateway", "", "Prometheus pushgateway URL (overrides config)")
	flagSkip        tool.ListFlag
)

func main() {
	flag.Var(&flagSkip, "skip", "comma-separated regexps of additional paths to skip")
	defer tool.Init()()
	if *flagUpload == *flagCommit {
		tool.Failf("exactly one of -upload and -commit must be specified")
	}
	cfg, err := host.LoadConfig(*flagConfig)
	if err != nil {
		tool.Fail(err)
	}
	if *flagBase != "" {
		cfg.Base = *flagBase
	}
	if *flagPushgateway != "" {
		cfg.Pushgateway = *flagPushgateway
	}
	cfg.ExtraFilesToSkip = append(cfg.ExtraFilesToSkip, flagSkip...)
	repo, err := vcs.NewRepo(*flagRoot)
	if err != nil {
		log.Fatalf("failed to open %v: %v", *flagRoot, err)
	}
	ctx := context.Background()
	var validator canned.ConfigValidator
	if *flagUpload {
		// Config validation needs credentials, without them the check degrades to a warning.
		client, err := luci.NewClient(ctx)
		if err != nil {
			log.Logf(0, "LUCI config validation is disabled: %v", err)
		} else {
			validator = client
		}
	}
	in, err := host.NewInput(cfg, repo, *flagCommit, validator)
	if err != nil {
		log.Fatal(err)
	}
	var results []presubmit.Result
	if *flagCommit {
		results = presubmit.CheckChangeOnCommit(in, host.Output{})
	} else {
		results = presubmit.CheckChangeOnUpload(in, host.Output{})
	}
	if *flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "\t")
		if err := enc.Encode(results); err != nil {
			tool.Fail(err)
		}
	} else {
		presubmit.Print(os.Stdout, results)
	}
	for _, stat := range stats.Collect(stats.Console) {
		log.Logf(0, "%-20v: %v", stat.Name, stat.Value)
	}
	if cfg.Pushgateway != "" {
		pushStats(ctx, cfg.Pushgateway, in.Head().Hash)
	}
	if presubmit.HasErrors(results) || *flagStrict && len(results) != 0 {
		os.Exit(1)
	}
}

func pushStats(ctx context.Context, url, head string) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	run := uuid.New().String()
	grouping := map[string]string{"run": run, "head": head}
	if err := stats.Push(ctx, url, "presubmit", grouping); err != nil {
		log.Logf(0, "%v", err)
		return
	}
	log.Logf(1, "pushed run %v metrics to %v", run, url)
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: osp-presubmit [flags]\n")
		flag.PrintDefaults()
	}
}
