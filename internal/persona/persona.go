// Package persona compiles persona YAML (name/style/forbid/notes) into a
// system prompt, screening fields against configurable forbidden-term
// patterns.
package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPrompt is used when the persona YAML is empty or unparseable.
const DefaultPrompt = "You are Katamari, a helpful, precise assistant."

// Compiler turns persona YAML into a system prompt. Compilation never
// fails: problems are reported as issue strings alongside a usable prompt.
type Compiler struct {
	patterns []*regexp.Regexp
}

// NewCompiler loads forbidden-term patterns from the JSON file at path
// (an array of regular expression strings). A missing or malformed file,
// or an empty path, yields a compiler with no patterns.
func NewCompiler(path string) *Compiler {
	return &Compiler{patterns: loadPatterns(path)}
}

func loadPatterns(path string) []*regexp.Regexp {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	var patterns []*regexp.Regexp
	for _, entry := range raw {
		if entry == "" {
			continue
		}
		re, err := regexp.Compile(entry)
		if err != nil {
			continue
		}
		patterns = append(patterns, re)
	}
	return patterns
}

// Compile renders yamlStr into a system prompt plus a list of issues.
func (c *Compiler) Compile(yamlStr string) (string, []string) {
	var issues []string
	if strings.TrimSpace(yamlStr) == "" {
		return DefaultPrompt, issues
	}

	var data map[string]any
	if err := yaml.Unmarshal([]byte(yamlStr), &data); err != nil {
		return DefaultPrompt, []string{fmt.Sprintf("YAML parse error: %v", err)}
	}

	name := stringField(data, "name", "Katamari")
	style := stringField(data, "style", "calm, concise")
	notes := strings.TrimSpace(stringField(data, "notes", ""))

	forbid, ok := stringList(data["forbid"])
	if !ok {
		issues = append(issues, "`forbid` must be a list of strings.")
	}

	if terms := c.forbiddenTerms(append([]string{name, style, notes}, forbid...)); len(terms) > 0 {
		issues = append(issues, "Forbidden terms detected: "+strings.Join(terms, ", ")+".")
	}

	parts := []string{
		fmt.Sprintf("You are %s. Maintain %s tone.", name, style),
		"Be accurate, helpful, and safe.",
	}
	if len(forbid) > 0 {
		parts = append(parts, "Avoid the following strictly: "+strings.Join(forbid, ", "))
	}
	if notes != "" {
		parts = append(parts, "Additional notes:\n"+notes)
	}
	return strings.Join(parts, "\n\n"), issues
}

// forbiddenTerms collects the distinct matches of every pattern across the
// given values, lowercased and sorted.
func (c *Compiler) forbiddenTerms(values []string) []string {
	seen := map[string]bool{}
	for _, re := range c.patterns {
		for _, value := range values {
			for _, match := range re.FindAllString(value, -1) {
				term := strings.ToLower(strings.TrimSpace(match))
				if term != "" {
					seen[term] = true
				}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func stringField(data map[string]any, key, def string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return def
	}
	return fmt.Sprint(v)
}

// stringList coerces a decoded YAML value into a list of strings. A scalar
// is wrapped into a single-element list and flagged (ok=false) so the
// caller can report the shape problem.
func stringList(v any) ([]string, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case []any:
		items := make([]string, 0, len(t))
		for _, item := range t {
			items = append(items, fmt.Sprint(item))
		}
		return items, true
	default:
		return []string{fmt.Sprint(t)}, false
	}
}
