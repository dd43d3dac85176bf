// Package prompts loads the LLM prompt templates embedded from JSON files.
// Each file is a flat object of prompt key to template text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var placeholderRe = regexp.MustCompile(`\{\{\.[A-Za-z][A-Za-z0-9_]*\}\}`)

// Library reads prompt files from a filesystem and keeps each parsed file
type Library struct {
	fsys  fs.FS
	mu    sync.RWMutex
	files map[string]map[string]string
}

// NewLibrary creates a Library over fsys
func NewLibrary(fsys fs.FS) *Library {
	return &Library{fsys: fsys, files: make(map[string]map[string]string)}
}

var defaultLibrary = NewLibrary(promptFiles)

func (l *Library) file(filename string) (map[string]string, error) {
	l.mu.RLock()
	parsed, ok := l.files[filename]
	l.mu.RUnlock()
	if ok {
		return parsed, nil
	}

	data, err := fs.ReadFile(l.fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	l.mu.Lock()
	l.files[filename] = parsed
	l.mu.Unlock()
	return parsed, nil
}

// Get returns the template stored under key in filename
func (l *Library) Get(filename, key string) (string, error) {
	parsed, err := l.file(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := parsed[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Render formats a template and fails when a placeholder is left unfilled
func (l *Library) Render(filename, key string, data map[string]string) (string, error) {
	template, err := l.Get(filename, key)
	if err != nil {
		return "", err
	}

	// checked on the template so values that contain "{{.X}}" are left alone
	var missing []string
	seen := make(map[string]bool)
	for _, ph := range placeholderRe.FindAllString(template, -1) {
		name := strings.TrimSuffix(strings.TrimPrefix(ph, "{{."), "}}")
		if _, ok := data[name]; !ok && !seen[ph] {
			seen[ph] = true
			missing = append(missing, ph)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %s/%s has unfilled placeholders: %s", filename, key, strings.Join(missing, ", "))
	}
	return Format(template, data), nil
}

// Keys returns the prompt keys of filename, sorted
func (l *Library) Keys(filename string) ([]string, error) {
	parsed, err := l.file(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(parsed))
	for key := range parsed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (l *Library) reset() {
	l.mu.Lock()
	l.files = make(map[string]map[string]string)
	l.mu.Unlock()
}

// Get retrieves an embedded prompt, e.g. Get("compliance.json", "classify-clause").
func Get(filename, key string) (string, error) {
	return defaultLibrary.Get(filename, key)
}

// MustGet is Get that panics, for prompts required at initialization time.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Render loads an embedded prompt and fills its placeholders
func Render(filename, key string, data map[string]string) (string, error) {
	return defaultLibrary.Render(filename, key, data)
}

// List returns the prompt keys in an embedded file, sorted.
func List(filename string) ([]string, error) {
	return defaultLibrary.Keys(filename)
}

// ClearCache drops the parsed embedded files
func ClearCache() {
	defaultLibrary.reset()
}

// Format replaces {{.Key}} placeholders with values from data in a single pass.
// Unknown placeholders are left in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
