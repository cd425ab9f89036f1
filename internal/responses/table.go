package responses

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Table maps response classes to text. It is safe for concurrent use;
// Reload replaces the whole mapping at once.
type Table struct {
	mu    sync.RWMutex
	texts map[Class]string
}

// Default returns a table holding the stock wording.
func Default() *Table {
	return &Table{texts: merged(nil)}
}

// Load reads a YAML mapping of class name to text from path. Classes the
// file leaves out keep their stock wording; unknown class names are an error
// so typos do not silently fall back.
func Load(path string) (*Table, error) {
	texts, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &Table{texts: texts}, nil
}

// Reload re-reads path into t. On error t is left untouched.
func (t *Table) Reload(path string) error {
	texts, err := readFile(path)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.texts = texts
	t.mu.Unlock()
	return nil
}

// Text returns the wording for c, or "" for silent classes.
func (t *Table) Text(c Class) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.texts[c]
}

// Expand returns the wording for c with {key} placeholders replaced from vars.
func (t *Table) Expand(c Class, vars map[string]string) string {
	return ExpandTemplate(t.Text(c), vars)
}

// ExpandTemplate replaces {key} placeholders in tmpl. Unknown placeholders
// are left as written.
func ExpandTemplate(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(vars)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func readFile(path string) (map[Class]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse responses %s: %w", path, err)
	}

	overrides := make(map[Class]string, len(raw))
	var unknown []string
	for k, v := range raw {
		c := Class(k)
		if !Known(c) {
			unknown = append(unknown, k)
			continue
		}
		overrides[c] = v
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("parse responses %s: unknown classes: %s", path, strings.Join(unknown, ", "))
	}
	return merged(overrides), nil
}

func merged(overrides map[Class]string) map[Class]string {
	texts := make(map[Class]string, len(defaults))
	for c, v := range defaults {
		texts[c] = v
	}
	for c, v := range overrides {
		texts[c] = v
	}
	return texts
}

// WriteDefaults writes the stock wording as YAML, for operators to copy and
// localize.
func WriteDefaults(path string) error {
	raw := make(map[string]string, len(defaults))
	for c, v := range defaults {
		raw[string(c)] = v
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write responses: %w", err)
	}
	return nil
}
