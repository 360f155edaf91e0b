// Package templates is the read-only store of versioned prompt templates,
// rubric forms, and few-shot examples. Templates are immutable for a given
// version, so resolved content is cached without invalidation.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/adalundhe/psyche/core/errors"
	"github.com/adalundhe/psyche/core/format"
)

const cacheSize = 128

// Store resolves (module, version[, diagnosis]) to template content under
// a fixed directory layout.
type Store struct {
	root  string
	cache *lru.Cache[string, string]
}

// NewStore opens a template store rooted at dir.
func NewStore(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("template root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template root %s is not a directory", root)
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{root: root, cache: cache}, nil
}

// Version renders a one-decimal version number as "x.y".
func Version(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// SystemPrompt resolves a module's system prompt for a version. When
// diagnosis is non-empty, a diagnosis-qualified variant overrides the
// default if one exists.
func (s *Store) SystemPrompt(module, version, diagnosis string) (string, error) {
	dir := filepath.Join(s.root, "prompts", module+"_system_prompt")
	needle := fmt.Sprintf("%s_system_prompt_version%s", module, version)

	if diagnosis != "" {
		if content, err := s.resolve(dir, needle+"_"+diagnosis); err == nil {
			return content, nil
		}
	}

	content, err := s.resolve(dir, needle)
	if err != nil {
		return "", errors.TemplateNotFound(module, version, diagnosis)
	}
	return content, nil
}

// ProfileForm loads the profile schema for a version and diagnosis tag.
func (s *Store) ProfileForm(version, diagnosis string) (*format.Map, error) {
	dir := filepath.Join(s.root, "profile_form")
	needle := fmt.Sprintf("profile_form_version%s_%s", version, diagnosis)

	content, err := s.resolve(dir, needle)
	if err != nil {
		return nil, errors.TemplateNotFound("profile_form", version, diagnosis)
	}
	form, err := format.ParseMap([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse profile form %s/%s: %w", version, diagnosis, err)
	}
	return form, nil
}

// GivenForm loads the construct schema shared by SP and PACA extraction.
func (s *Store) GivenForm(version string) (*format.Map, error) {
	dir := filepath.Join(s.root, "prompts", "paca_system_prompt")
	needle := fmt.Sprintf("given_form_version%s", version)

	content, err := s.resolve(dir, needle)
	if err != nil {
		return nil, errors.TemplateNotFound("given_form", version, "")
	}
	form, err := format.ParseMap([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse given form %s: %w", version, err)
	}
	return form, nil
}

// Rubric loads the raw scoring rubric for a version. Parsing belongs to
// the evaluator; the store only resolves and reads the file.
func (s *Store) Rubric(version string) (string, error) {
	dir := filepath.Join(s.root, "rubric")
	needle := fmt.Sprintf("psyche_rubric_version%s", version)

	content, err := s.resolve(dir, needle)
	if err != nil {
		return "", errors.TemplateNotFound("rubric", version, "")
	}
	return content, nil
}

// MSEFewShot loads the diagnosis-specific mental status examination
// few-shot examples.
func (s *Store) MSEFewShot(diagnosis string) (string, error) {
	dir := filepath.Join(s.root, "prompts", "mse_few_shot")
	content, err := s.resolve(dir, "mse_"+diagnosis)
	if err != nil {
		return "", errors.TemplateNotFound("mse_few_shot", "", diagnosis)
	}
	return content, nil
}

// InstructionForm loads the diagnosis-specific behavioral instruction form.
func (s *Store) InstructionForm(diagnosis string) (string, error) {
	dir := filepath.Join(s.root, "prompts", "instruction_form")
	content, err := s.resolve(dir, "instruction_form_"+diagnosis)
	if err != nil {
		return "", errors.TemplateNotFound("instruction_form", "", diagnosis)
	}
	return content, nil
}

// resolve finds the file in dir whose name contains needle and returns its
// content. Matches are sorted so resolution is deterministic when several
// files qualify.
func (s *Store) resolve(dir, needle string) (string, error) {
	matcher := glob.MustCompile("*" + needle + "*")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read template dir %s: %w", dir, err)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matcher.Match(entry.Name()) {
			matches = append(matches, entry.Name())
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no template matching %q in %s", needle, dir)
	}
	sort.Strings(matches)

	return s.read(filepath.Join(dir, matches[0]))
}

func (s *Store) read(path string) (string, error) {
	if content, ok := s.cache.Get(path); ok {
		return content, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := string(data)
	s.cache.Add(path, content)
	return content, nil
}
