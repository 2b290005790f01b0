// Copyright 2018 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package vcs provides helper functions for inspecting a local change in a git checkout.
package vcs

import (
	"bytes"
	"time"

	"github.com/google/osp-presubmit/pkg/osutil"
)

type Repo interface {
	// Root returns the absolute path of the top-level directory of the checkout.
	Root() string

	// HeadCommit returns info about the HEAD commit of the current branch.
	HeadCommit() (*Commit, error)

	// Description returns the messages of commits in base..HEAD, newest first.
	Description(base string) (string, error)

	// ChangedFiles returns files that differ between base and the working tree,
	// together with the added and modified lines of each file.
	ChangedFiles(base string) ([]*FileChange, error)
}

type Commit struct {
	Hash   string
	Title  string
	Author string
	Date   time.Time
}

type Action string

const (
	ActionAdd    Action = "A"
	ActionModify Action = "M"
	ActionDelete Action = "D"
)

type FileChange struct {
	// Path is relative to the repository root, in slash notation.
	Path   string
	Action Action
	// Lines are added or modified lines in the new version of the file, ordered by line number.
	Lines []Line
}

type Line struct {
	// Num is 1-based.
	Num  int
	Text string
}

const HEAD = "HEAD"

// NewRepo opens the git checkout containing dir.
func NewRepo(dir string) (Repo, error) {
	return openGit(dir)
}

// gitTimeout bounds every git invocation.
var gitTimeout = 10 * time.Minute

// runGit returns stdout of the git command, stderr is only included into errors.
func runGit(dir string, args ...string) ([]byte, error) {
	cmd := osutil.Command("git", args...)
	cmd.Dir = dir
	stdout := new(bytes.Buffer)
	cmd.Stdout = stdout
	if _, err := osutil.Run(gitTimeout, cmd); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}
