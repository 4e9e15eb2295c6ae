package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the project file looked up by the CLI.
const ManifestFileName = "dada.yml"

// Manifest represents the parsed contents of dada.yml.
type Manifest struct {
	Path        string
	Dir         string
	Name        string
	Version     string
	Authors     []string
	Targets     map[string]*TargetSpec
	TargetOrder []string
	Lessons     map[string]*LessonSpec
}

// TargetSpec describes one runnable program.
type TargetSpec struct {
	Name         string
	OriginalName string
	Main         string
	// Inputs answer the program's prompts in order.
	Inputs []string
	// Lesson names the lesson whose checkout holds Main.
	Lesson string
}

// LessonSpec describes where a lesson's programs come from: a git
// repository pinned by rev, tag or branch, or a local directory.
type LessonSpec struct {
	Name   string
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
}

// IsGit reports whether the lesson is fetched from a repository.
func (l *LessonSpec) IsGit() bool {
	return l != nil && l.Git != ""
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// ErrNoTargets is returned when a manifest declares nothing to run.
var ErrNoTargets = errors.New("manifest: no targets defined")

// LoadManifest parses dada.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FindManifest walks up from dir looking for dada.yml.
func FindManifest(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(abs, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}

	for _, name := range m.TargetOrder {
		target := m.Targets[name]
		if target == nil {
			continue
		}
		if target.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entrypoint", target.OriginalName))
		}
		if target.Lesson != "" {
			if _, ok := m.Lessons[target.Lesson]; !ok {
				errs.Issues = append(errs.Issues, fmt.Sprintf("target %q references unknown lesson %q", target.OriginalName, target.Lesson))
			}
		}
	}

	for _, name := range sortedKeys(m.Lessons) {
		for _, issue := range m.Lessons[name].validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("lessons.%s: %s", name, issue))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (l *LessonSpec) validate() []string {
	var errs []string
	if l == nil {
		return errs
	}
	pins := 0
	for _, pin := range []string{l.Rev, l.Tag, l.Branch} {
		if pin != "" {
			pins++
		}
	}
	switch {
	case l.Git != "" && l.Path != "":
		errs = append(errs, "lessons cannot specify both git and path")
	case l.Git == "" && l.Path == "":
		errs = append(errs, "must specify git or path")
	case l.Path != "" && pins > 0:
		errs = append(errs, "path lessons cannot specify rev, tag, or branch")
	case l.Git != "" && pins != 1:
		errs = append(errs, "git lessons require exactly one of rev, tag, or branch")
	}
	return errs
}

// DefaultTarget returns the first target in manifest order.
func (m *Manifest) DefaultTarget() (*TargetSpec, error) {
	if m == nil || len(m.TargetOrder) == 0 {
		return nil, ErrNoTargets
	}
	return m.Targets[m.TargetOrder[0]], nil
}

// FindTarget looks up a target by sanitized or original name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	if m == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if target, ok := m.Targets[sanitizeSegment(name)]; ok && target != nil {
		return target, true
	}
	for _, key := range m.TargetOrder {
		if target := m.Targets[key]; target != nil && strings.EqualFold(target.OriginalName, name) {
			return target, true
		}
	}
	return nil, false
}

// FindLesson looks up a lesson by name.
func (m *Manifest) FindLesson(name string) (*LessonSpec, bool) {
	if m == nil {
		return nil, false
	}
	lesson, ok := m.Lessons[sanitizeSegment(name)]
	return lesson, ok && lesson != nil
}

// ResolveMain returns the program file for target. Targets inside a git
// lesson need the lesson's lock entry and a checkout under home.
func (m *Manifest) ResolveMain(target *TargetSpec, lock *Lockfile, home string) (string, error) {
	if target == nil {
		return "", fmt.Errorf("manifest: nil target")
	}
	if target.Lesson == "" {
		return m.resolvePath(target.Main), nil
	}
	lesson, ok := m.Lessons[target.Lesson]
	if !ok {
		return "", fmt.Errorf("target %q: unknown lesson %q", target.OriginalName, target.Lesson)
	}
	if !lesson.IsGit() {
		return filepath.Join(m.resolvePath(lesson.Path), filepath.FromSlash(target.Main)), nil
	}
	locked, ok := lock.Find(lesson.Name)
	if !ok {
		return "", fmt.Errorf("target %q: lesson %q is not fetched; run `dada fetch %s`", target.OriginalName, lesson.Name, lesson.Name)
	}
	return filepath.Join(LessonDir(home, lesson.Name, locked.Version), filepath.FromSlash(target.Main)), nil
}

func (m *Manifest) resolvePath(rel string) string {
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Dir, rel)
}

type manifestFile struct {
	Name    string     `yaml:"name"`
	Version string     `yaml:"version"`
	Authors stringList `yaml:"authors"`
	Targets targetMap  `yaml:"targets"`
	Lessons lessonMap  `yaml:"lessons"`
}

type targetYAML struct {
	Main   string     `yaml:"main"`
	Inputs stringList `yaml:"inputs"`
	Lesson string     `yaml:"lesson"`
}

type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := new(targetYAML)
		if valueNode.Kind == yaml.ScalarNode && valueNode.Tag != "!!null" {
			// `name: path/to/main.dada` shorthand
			entry.Main = valueNode.Value
		} else if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

type lessonMap map[string]*LessonSpec

func (lm *lessonMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		*lm = make(lessonMap)
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: lessons must be a mapping")
	}
	result := make(lessonMap, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return err
		}
		key = sanitizeSegment(key)
		if key == "" {
			return fmt.Errorf("manifest: lesson names must be non-empty")
		}
		var raw struct {
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			Path   string `yaml:"path"`
		}
		if err := value.Content[i+1].Decode(&raw); err != nil {
			return fmt.Errorf("manifest: lesson %q: %w", key, err)
		}
		result[key] = &LessonSpec{
			Name:   key,
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Path:   strings.TrimSpace(raw.Path),
		}
	}
	*lm = result
	return nil
}

type stringList []string

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	return append([]string(nil), l...)
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = stringList{value.Value}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:        path,
		Dir:         filepath.Dir(path),
		Name:        sanitizeSegment(mf.Name),
		Version:     strings.TrimSpace(mf.Version),
		Targets:     make(map[string]*TargetSpec, len(mf.Targets.items)),
		TargetOrder: make([]string, 0, len(mf.Targets.items)),
		Lessons:     map[string]*LessonSpec(mf.Lessons),
	}
	if result.Lessons == nil {
		result.Lessons = map[string]*LessonSpec{}
	}
	for _, author := range mf.Authors {
		result.Authors = append(result.Authors, strings.TrimSpace(author))
	}

	for _, item := range mf.Targets.items {
		if item.spec == nil {
			continue
		}
		original := strings.TrimSpace(item.name)
		sanitized := sanitizeSegment(original)
		if _, exists := result.Targets[sanitized]; exists {
			continue
		}
		result.Targets[sanitized] = &TargetSpec{
			Name:         sanitized,
			OriginalName: original,
			Main:         strings.TrimSpace(item.spec.Main),
			Inputs:       item.spec.Inputs.Clone(),
			Lesson:       sanitizeSegment(item.spec.Lesson),
		}
		result.TargetOrder = append(result.TargetOrder, sanitized)
	}
	return result
}
