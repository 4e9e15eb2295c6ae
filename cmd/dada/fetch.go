package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"dadalang/interpreter-go/pkg/driver"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

func runFetch(args []string) int {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		if errors.Is(err, errManifestNotFound) {
			fmt.Fprintln(os.Stderr, "dada fetch requires dada.yml in the current directory or a parent")
		} else {
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		}
		return 1
	}
	home, err := driver.HomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	names := args
	if len(names) == 0 {
		for name := range manifest.Lessons {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stdout, "no lessons to fetch")
		return 0
	}

	lockPath := filepath.Join(manifest.Dir, driver.LockfileName)
	lock, err := driver.LoadOrNewLockfile(lockPath, manifest.Name, cliToolVersion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	lock.Tool = cliToolVersion

	fetcher := newLessonFetcher(home)
	for _, name := range names {
		lesson, ok := manifest.FindLesson(name)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown lesson %q\n", name)
			return 1
		}
		entry, err := fetcher.Fetch(manifest, lesson)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fetch %s: %v\n", lesson.Name, err)
			return 1
		}
		lock.Upsert(entry)
		fmt.Fprintf(os.Stdout, "fetched %s %s\n", entry.Name, entry.Version)
	}

	if err := driver.WriteLockfile(lock, lockPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}

type lessonFetcher struct {
	home string
}

func newLessonFetcher(home string) *lessonFetcher {
	return &lessonFetcher{home: home}
}

// Fetch checks out a git lesson under home, or fingerprints a local one in
// place.
func (f *lessonFetcher) Fetch(manifest *driver.Manifest, lesson *driver.LessonSpec) (*driver.LockedLesson, error) {
	if !lesson.IsGit() {
		dir := lesson.Path
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(manifest.Dir, filepath.FromSlash(dir))
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("expected directory at %s", dir)
		}
		checksum, err := dirChecksum(dir)
		if err != nil {
			return nil, err
		}
		return &driver.LockedLesson{
			Name:     lesson.Name,
			Version:  "path",
			Source:   "path:" + dir,
			Checksum: checksum,
		}, nil
	}

	baseDir := filepath.Join(f.home, "lessons", driver.SanitizePathSegment(lesson.Name))
	version, commit, err := ensureGitCheckout(baseDir, lesson)
	if err != nil {
		return nil, err
	}
	checksum, err := dirChecksum(driver.LessonDir(f.home, lesson.Name, version))
	if err != nil {
		return nil, err
	}
	return &driver.LockedLesson{
		Name:     lesson.Name,
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", lesson.Git, commit),
		Checksum: checksum,
	}, nil
}

func ensureGitCheckout(baseDir string, lesson *driver.LessonSpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revisions, descriptor, err := gitRevisionsFromLesson(lesson)
	if err != nil {
		return "", "", err
	}

	if lesson.Rev != "" {
		existing := filepath.Join(baseDir, driver.SanitizePathSegment(lesson.Rev))
		if _, err := os.Stat(existing); err == nil {
			return lesson.Rev, lesson.Rev, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: lesson.Git})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", lesson.Git, err)
	}

	var hash *plumbing.Hash
	for _, revision := range revisions {
		if hash, err = repo.ResolveRevision(revision); err == nil {
			break
		}
	}
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", descriptor, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, driver.SanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", descriptor, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// gitRevisionsFromLesson lists the revisions to try in order. Branches other
// than the remote HEAD only exist as remote-tracking refs after a clone.
func gitRevisionsFromLesson(lesson *driver.LessonSpec) ([]plumbing.Revision, string, error) {
	switch {
	case lesson.Rev != "":
		return []plumbing.Revision{plumbing.Revision(lesson.Rev)}, lesson.Rev, nil
	case lesson.Tag != "":
		return []plumbing.Revision{plumbing.Revision("refs/tags/" + lesson.Tag)}, lesson.Tag, nil
	case lesson.Branch != "":
		return []plumbing.Revision{
			plumbing.Revision("refs/remotes/origin/" + lesson.Branch),
			plumbing.Revision("refs/heads/" + lesson.Branch),
		}, lesson.Branch, nil
	}
	return nil, "", fmt.Errorf("git lessons require rev, tag, or branch")
}

// dirChecksum hashes every file below path by relative name and contents,
// skipping git metadata.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
