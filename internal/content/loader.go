package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile mirrors the top-level layout of the catalog YAML. Assessment
// rule definitions live in the same file under their own keys and are
// decoded separately by the assessment package.
type catalogFile struct {
	Courses []Course `yaml:"courses"`
}

// LoadCatalog reads the course catalog from a YAML file.
func LoadCatalog(path string) ([]Course, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validateCatalog(f.Courses); err != nil {
		return nil, err
	}
	return f.Courses, nil
}

func validateCatalog(courses []Course) error {
	seenCourse := map[string]bool{}
	seenModule := map[string]bool{}
	seenTopic := map[string]bool{}
	for _, c := range courses {
		if c.ID == "" {
			return fmt.Errorf("catalog: course with empty id")
		}
		if seenCourse[c.ID] {
			return fmt.Errorf("catalog: duplicate course id %q", c.ID)
		}
		seenCourse[c.ID] = true
		for _, m := range c.Modules {
			if m.ID == "" {
				return fmt.Errorf("catalog: course %q: module with empty id", c.ID)
			}
			if seenModule[m.ID] {
				return fmt.Errorf("catalog: duplicate module id %q", m.ID)
			}
			seenModule[m.ID] = true
			for _, t := range m.Topics {
				if t.ID == "" {
					return fmt.Errorf("catalog: module %q: topic with empty id", m.ID)
				}
				if seenTopic[t.ID] {
					return fmt.Errorf("catalog: duplicate topic id %q", t.ID)
				}
				seenTopic[t.ID] = true
			}
		}
	}
	return nil
}
