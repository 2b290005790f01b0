// Copyright 2017 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package vcs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/osp-presubmit/pkg/log"
	git_diff_parser "github.com/speakeasy-api/git-diff-parser"
)

type git struct {
	dir string
}

func openGit(dir string) (*git, error) {
	output, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%v is not inside a git checkout: %w", dir, err)
	}
	return &git{
		dir: filepath.FromSlash(strings.TrimSpace(string(output))),
	}, nil
}

func (git *git) Root() string {
	return git.dir
}

func (git *git) HeadCommit() (*Commit, error) {
	return git.getCommit(HEAD)
}

func (git *git) getCommit(commit string) (*Commit, error) {
	output, err := runGit(git.dir, "log", "--format=%H%n%s%n%ae%n%ad", "-n", "1", commit)
	if err != nil {
		return nil, err
	}
	return gitParseCommit(output)
}

func gitParseCommit(output []byte) (*Commit, error) {
	lines := bytes.Split(output, []byte{'\n'})
	if len(lines) < 4 || len(lines[0]) != 40 {
		return nil, fmt.Errorf("unexpected git log output: %q", output)
	}
	const dateFormat = "Mon Jan 2 15:04:05 2006 -0700"
	date, err := time.Parse(dateFormat, string(lines[3]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse date in git log output: %w\n%q", err, output)
	}
	com := &Commit{
		Hash:   string(lines[0]),
		Title:  string(lines[1]),
		Author: string(lines[2]),
		Date:   date,
	}
	return com, nil
}

func (git *git) Description(base string) (string, error) {
	args := []string{"log", "--format=%B"}
	if base == "" {
		args = append(args, "-n", "1", HEAD)
	} else {
		args = append(args, base+".."+HEAD)
	}
	output, err := runGit(git.dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func (git *git) ChangedFiles(base string) ([]*FileChange, error) {
	if base == "" {
		base = HEAD
	}
	// Paths with non-ASCII characters are printed as is, not as quoted octal escapes.
	common := []string{"-c", "core.quotePath=false", "diff", "--no-ext-diff", "--no-renames", "--no-color"}
	status, err := runGit(git.dir, append(common, "--name-status", "-z", base, "--")...)
	if err != nil {
		return nil, err
	}
	files, err := gitParseNameStatus(status)
	if err != nil {
		return nil, err
	}
	diff, err := runGit(git.dir, append(common, "-U0", "--src-prefix=a/", "--dst-prefix=b/", base, "--")...)
	if err != nil {
		return nil, err
	}
	lines, err := gitParseDiffLines(string(diff))
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.Action != ActionDelete {
			file.Lines = lines[file.Path]
		}
	}
	return files, nil
}

// gitParseNameStatus parses output of "git diff --name-status -z".
func gitParseNameStatus(output []byte) ([]*FileChange, error) {
	fields := strings.Split(strings.TrimSuffix(string(output), "\x00"), "\x00")
	if len(fields) == 1 && fields[0] == "" {
		return nil, nil
	}
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("unexpected git diff --name-status output: %q", output)
	}
	var files []*FileChange
	for i := 0; i < len(fields); i += 2 {
		var action Action
		switch fields[i] {
		case "A":
			action = ActionAdd
		case "D":
			action = ActionDelete
		default:
			// Modified, type changed, unmerged.
			action = ActionModify
		}
		files = append(files, &FileChange{
			Path:   fields[i+1],
			Action: action,
		})
	}
	return files, nil
}

// gitParseDiffLines returns added and modified lines of a zero-context diff keyed by file path.
// The path is taken from the "+++ b/path" line: the parser splits "diff --git a/x b/x" on spaces,
// so each header is replaced with the index of the file before parsing.
func gitParseDiffLines(diff string) (map[string][]Line, error) {
	var paths []string
	inHeader := false
	text := strings.Split(diff, "\n")
	for i, line := range text {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			text[i] = fmt.Sprintf("diff --git a/%[1]v b/%[1]v", len(paths))
			paths = append(paths, "")
			inHeader = true
		case strings.HasPrefix(line, "@@"):
			inHeader = false
		case inHeader && strings.HasPrefix(line, "+++ "):
			path, err := gitDiffHeaderPath(line[len("+++ "):])
			if err != nil {
				return nil, err
			}
			paths[len(paths)-1] = path
		}
	}
	parsed, errs := git_diff_parser.Parse(strings.Join(text, "\n"))
	if len(errs) != 0 {
		return nil, fmt.Errorf("failed to parse git diff: %v", errs)
	}
	res := make(map[string][]Line)
	for _, file := range parsed.FileDiff {
		idx, err := strconv.Atoi(file.ToFile)
		if err != nil || idx < 0 || idx >= len(paths) {
			return nil, fmt.Errorf("failed to parse git diff: unexpected file %q", file.ToFile)
		}
		path := paths[idx]
		if path == "" || file.IsBinary {
			continue
		}
		var lines []Line
		for _, hunk := range file.Hunks {
			num := hunk.StartLineNumberNew
			for _, change := range hunk.ChangeList {
				switch change.Type {
				case git_diff_parser.ContentChangeTypeAdd, git_diff_parser.ContentChangeTypeModify:
					lines = append(lines, Line{Num: num, Text: change.To})
					num++
				}
			}
		}
		log.Logf(2, "git diff: %v: %v changed lines", path, len(lines))
		res[path] = lines
	}
	return res, nil
}

// gitDiffHeaderPath extracts the path from the "+++" line of a file diff, "" for /dev/null.
// Git terminates names containing spaces with a tab and quotes names with special characters.
func gitDiffHeaderPath(name string) (string, error) {
	name = strings.TrimSuffix(name, "\t")
	if name == "/dev/null" {
		return "", nil
	}
	if strings.HasPrefix(name, `"`) {
		unquoted, err := strconv.Unquote(name)
		if err != nil {
			return "", fmt.Errorf("failed to parse git diff path %v: %w", name, err)
		}
		name = unquoted
	}
	return strings.TrimPrefix(name, "b/"), nil
}
