package xtender

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// TemplatesDir holds the templates shipped with the distribution.
	TemplatesDir = "/opt/itrs/xtender/templates/"

	// CustomTemplatesDir takes precedence over TemplatesDir so a template
	// can be overridden by placing a modified copy there.
	CustomTemplatesDir = "/opt/itrs/xtender/templates/custom/"
)

const templateFormatHint = `make sure that each entry in the template follows this format:
- name: <name>
  timeout: <timeout> # (optional)
  command: |
    <command with args>`

// TemplateEntry is one check definition from a template file.
type TemplateEntry struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
	Timeout *int64 `yaml:"timeout"`
}

// ParseTemplate parses a yaml template into its check entries.
func ParseTemplate(raw []byte) ([]TemplateEntry, error) {
	entries := []TemplateEntry{}
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("template is not a valid check sequence (%s), %s", err.Error(), templateFormatHint)
	}

	for i := range entries {
		entries[i].Name = strings.TrimSpace(entries[i].Name)
		entries[i].Command = strings.TrimSpace(entries[i].Command)
		if entries[i].Name == "" {
			return nil, fmt.Errorf("unable to parse name in check %d, %s", i+1, templateFormatHint)
		}
		if entries[i].Command == "" {
			return nil, fmt.Errorf("unable to parse command in check %q, %s", entries[i].Name, templateFormatHint)
		}
	}

	return entries, nil
}

// ParsedTemplates records which requested templates could be read. The
// missing ones still show up in the output headline.
type ParsedTemplates struct {
	Found   []string
	Missing []string

	contents [][]byte
}

// LoadTemplates reads all requested templates, collecting names that
// could not be resolved instead of failing.
func LoadTemplates(names []string) *ParsedTemplates {
	parsed := &ParsedTemplates{}
	for _, name := range names {
		content, err := findAndReadTemplate(name)
		if err != nil {
			log.Debugf("unable to read template %s: %s", name, err.Error())
			parsed.Missing = append(parsed.Missing, name)

			continue
		}
		parsed.Found = append(parsed.Found, name)
		parsed.contents = append(parsed.contents, content)
	}

	return parsed
}

// BuildChecks parses all found templates and builds their checks with
// ranges expanded.
func (p *ParsedTemplates) BuildChecks(keys *KeyStore) ([]*Check, error) {
	checks := []*Check{}
	for _, content := range p.contents {
		entries, err := ParseTemplate(content)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			timeout := DefaultCheckTimeout
			if entry.Timeout != nil {
				timeout = *entry.Timeout
			}

			check, err := NewCheckBuilder().
				Name(entry.Name).
				Command(entry.Command).
				Timeout(timeout).
				KeyStore(keys).
				Build()
			if err != nil {
				return nil, fmt.Errorf("unable to build check: %s", err.Error())
			}

			expanded, err := check.ExpandRanges()
			if err != nil {
				return nil, fmt.Errorf("unable to build check: %s", err.Error())
			}

			checks = append(checks, expanded...)
		}
	}

	return checks, nil
}

func isYamlFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

// findAndReadTemplate resolves a template by path or by bare name in the
// custom and dist template directories.
func findAndReadTemplate(template string) ([]byte, error) {
	if _, err := os.Stat(template); err == nil && isYamlFile(template) {
		return os.ReadFile(template)
	}

	candidates := []string{
		CustomTemplatesDir + template + ".yaml",
		CustomTemplatesDir + template + ".yml",
		TemplatesDir + template + ".yaml",
		TemplatesDir + template + ".yml",
	}
	for _, path := range candidates {
		if content, err := os.ReadFile(path); err == nil {
			log.Debugf("found template file: %s", path)

			return content, nil
		}
	}

	log.Debugf("unable to find template file in standard directories, trying as path: %s", template)

	return os.ReadFile(template)
}
