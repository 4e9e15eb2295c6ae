package driver

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LockfileName sits next to dada.yml.
const LockfileName = "dada.lock"

// Lockfile models the dada.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Lessons   []*LockedLesson
}

// LockedLesson records one fetched lesson.
type LockedLesson struct {
	Name     string
	Version  string
	Source   string
	Checksum string
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      sanitizeSegment(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Lessons:   []*LockedLesson{},
	}
}

// LoadLockfile parses dada.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := raw.toLockfile()
	lock.Path = abs
	return lock, nil
}

// LoadOrNewLockfile loads path, or starts an empty lockfile when it does not
// exist yet.
func LoadOrNewLockfile(path, root, tool string) (*Lockfile, error) {
	lock, err := LoadLockfile(path)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	lock = NewLockfile(root, tool)
	lock.Path = path
	return lock, nil
}

// WriteLockfile serialises the lockfile back to disk, refreshing metadata.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	if path == "" {
		if lock.Path == "" {
			return fmt.Errorf("lockfile: missing path")
		}
		path = lock.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}

	lock.Generated = time.Now().UTC().Format(time.RFC3339)
	lock.Path = abs
	lock.normalize()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lock.toDisk()); err != nil {
		return fmt.Errorf("lockfile: marshal %s: %w", abs, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("lockfile: encoder close: %w", err)
	}
	if err := os.WriteFile(abs, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", abs, err)
	}
	return nil
}

// Find returns the entry for lesson name.
func (l *Lockfile) Find(name string) (*LockedLesson, bool) {
	if l == nil {
		return nil, false
	}
	name = sanitizeSegment(name)
	for _, lesson := range l.Lessons {
		if lesson != nil && lesson.Name == name {
			return lesson, true
		}
	}
	return nil, false
}

// Upsert replaces the entry with the same name or appends a new one.
func (l *Lockfile) Upsert(entry *LockedLesson) {
	if l == nil || entry == nil {
		return
	}
	entry.Name = sanitizeSegment(entry.Name)
	for idx, existing := range l.Lessons {
		if existing != nil && existing.Name == entry.Name {
			l.Lessons[idx] = entry
			return
		}
	}
	l.Lessons = append(l.Lessons, entry)
	l.normalize()
}

func (l *Lockfile) normalize() {
	if l == nil {
		return
	}
	l.Root = sanitizeSegment(l.Root)
	l.Tool = strings.TrimSpace(l.Tool)
	kept := l.Lessons[:0]
	for _, lesson := range l.Lessons {
		if lesson == nil {
			continue
		}
		lesson.Name = sanitizeSegment(lesson.Name)
		lesson.Version = strings.TrimSpace(lesson.Version)
		lesson.Source = strings.TrimSpace(lesson.Source)
		lesson.Checksum = strings.TrimSpace(lesson.Checksum)
		kept = append(kept, lesson)
	}
	l.Lessons = kept
	sort.SliceStable(l.Lessons, func(i, j int) bool {
		return l.Lessons[i].Name < l.Lessons[j].Name
	})
}

func (l *Lockfile) toDisk() lockfileDisk {
	lessons := make([]lockfileLesson, 0, len(l.Lessons))
	for _, lesson := range l.Lessons {
		lessons = append(lessons, lockfileLesson{
			Name:     lesson.Name,
			Version:  lesson.Version,
			Source:   lesson.Source,
			Checksum: lesson.Checksum,
		})
	}
	return lockfileDisk{
		Root:      l.Root,
		Generated: l.Generated,
		Tool:      l.Tool,
		Lessons:   lessons,
	}
}

type lockfileDisk struct {
	Root      string           `yaml:"root"`
	Generated string           `yaml:"generated"`
	Tool      string           `yaml:"tool"`
	Lessons   []lockfileLesson `yaml:"lessons"`
}

type lockfileLesson struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Source   string `yaml:"source"`
	Checksum string `yaml:"checksum"`
}

func (d lockfileDisk) toLockfile() *Lockfile {
	lock := &Lockfile{
		Root:      d.Root,
		Generated: strings.TrimSpace(d.Generated),
		Tool:      d.Tool,
		Lessons:   make([]*LockedLesson, 0, len(d.Lessons)),
	}
	for _, lesson := range d.Lessons {
		lock.Lessons = append(lock.Lessons, &LockedLesson{
			Name:     lesson.Name,
			Version:  lesson.Version,
			Source:   lesson.Source,
			Checksum: lesson.Checksum,
		})
	}
	lock.normalize()
	return lock
}
