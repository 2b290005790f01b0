// Copyright 2019 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package vcs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/osp-presubmit/pkg/osutil"
)

const (
	userEmail = `test@openscreen.dev`
	userName  = `Test Presubmit`
)

// TestRepo is a scratch git repository for tests.
type TestRepo struct {
	t   *testing.T
	Dir string
}

func (repo *TestRepo) Git(args ...string) string {
	repo.t.Helper()
	cmd := osutil.Command("git", args...)
	cmd.Dir = repo.Dir
	cmd.Env = filterEnv()
	output, err := osutil.Run(time.Minute, cmd)
	if err != nil {
		repo.t.Fatal(err)
	}
	return strings.TrimSpace(string(output))
}

// MakeTestRepo creates an empty repository in dir, the test is skipped if git is not installed.
func MakeTestRepo(t *testing.T, dir string) *TestRepo {
	if !osutil.HasBinary("git") {
		t.Skip("git is not installed")
	}
	if err := osutil.MkdirAll(dir); err != nil {
		t.Fatal(err)
	}
	repo := &TestRepo{
		t:   t,
		Dir: dir,
	}
	repo.Git("init", "-q")
	repo.Git("config", "--add", "user.email", userEmail)
	repo.Git("config", "--add", "user.name", userName)
	repo.Git("config", "core.autocrlf", "false")
	return repo
}

type FileContent struct {
	File    string
	Content string
}

func (fc *FileContent) Apply(repo *TestRepo) error {
	file := filepath.Join(repo.Dir, filepath.FromSlash(fc.File))
	if err := osutil.MkdirAll(filepath.Dir(file)); err != nil {
		return err
	}
	if err := os.WriteFile(file, []byte(fc.Content), 0644); err != nil {
		return err
	}
	repo.Git("add", fc.File)
	return nil
}

// WriteFiles writes and stages the files without committing them.
func (repo *TestRepo) WriteFiles(files ...FileContent) {
	repo.t.Helper()
	for i, fc := range files {
		if err := fc.Apply(repo); err != nil {
			repo.t.Fatalf("failed to apply file %d: %v", i, err)
		}
	}
}

// CommitChangeset commits the files and returns hash of the new commit.
func (repo *TestRepo) CommitChangeset(description string, files ...FileContent) string {
	repo.t.Helper()
	repo.WriteFiles(files...)
	repo.Git("commit", "-q", "--allow-empty", "-m", description)
	return repo.Git("rev-parse", HEAD)
}

// filterEnv drops git variables of the enclosing checkout (e.g. when tests run from a git hook).
func filterEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "GIT_") {
			continue
		}
		env = append(env, kv)
	}
	return env
}
