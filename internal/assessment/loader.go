package assessment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile decodes the assessment sections of the catalog YAML. Course
// structure in the same file is decoded by the content package; unknown
// keys are ignored on both sides.
type rulesFile struct {
	Quizzes   []quizDef     `yaml:"quizzes"`
	Exercises []exerciseDef `yaml:"exercises"`
}

type quizDef struct {
	ID      string `yaml:"id"`
	Multi   bool   `yaml:"multi"`
	Correct []int  `yaml:"correct"`
}

type exerciseDef struct {
	ID     string     `yaml:"id"`
	Checks []checkDef `yaml:"checks"`
}

type checkDef struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Kind    string `yaml:"kind"` // open-tag | close-tag | tag-content | order | pattern | contains
	Tag     string `yaml:"tag"`
	Pattern string `yaml:"pattern"`
	Substr  string `yaml:"substr"`
	First   string `yaml:"first"`
	Second  string `yaml:"second"`
}

// LoadRules reads quiz and exercise rule definitions from the catalog file
// into a fresh registry.
func LoadRules(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	reg := NewRegistry()
	for _, q := range f.Quizzes {
		if q.ID == "" {
			return nil, fmt.Errorf("rules: quiz with empty id")
		}
		reg.Register(q.ID, QuizRule{Correct: q.Correct, Multi: q.Multi})
	}
	for _, e := range f.Exercises {
		if e.ID == "" {
			return nil, fmt.Errorf("rules: exercise with empty id")
		}
		rule, err := buildCodeRule(e)
		if err != nil {
			return nil, fmt.Errorf("rules: exercise %s: %w", e.ID, err)
		}
		reg.Register(e.ID, rule)
	}
	return reg, nil
}

func buildCodeRule(def exerciseDef) (CodeRule, error) {
	var rule CodeRule
	for i, cd := range def.Checks {
		id := cd.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", cd.Kind, i)
		}
		label := cd.Label
		if label == "" {
			label = id
		}
		var (
			chk Check
			err error
		)
		switch cd.Kind {
		case "open-tag":
			chk, err = HasOpenTag(id, label, cd.Tag)
		case "close-tag":
			chk, err = HasCloseTag(id, label, cd.Tag)
		case "tag-content":
			chk, err = TagContent(id, label, cd.Tag, cd.Pattern)
		case "order":
			chk, err = Order(id, label, cd.First, cd.Second)
		case "pattern":
			chk, err = Pattern(id, label, cd.Pattern)
		case "contains":
			chk = Contains(id, label, cd.Substr)
		default:
			return CodeRule{}, fmt.Errorf("check %s: unknown kind %q", id, cd.Kind)
		}
		if err != nil {
			return CodeRule{}, err
		}
		rule.Checks = append(rule.Checks, chk)
	}
	return rule, nil
}
