package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `
courses:
  - id: c1
    title: Course One
    preliminary: true
    modules:
      - id: m1
        title: Module One
        topics:
          - id: t1
            title: Topic One
            body: "hello [QUIZ: q1] world"
        homework:
          brief: do the thing
quizzes:
  - id: q1
    correct: [1]
`)
	courses, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(courses) != 1 || len(courses[0].Modules) != 1 {
		t.Fatalf("unexpected shape: %+v", courses)
	}
	m := courses[0].Modules[0]
	if m.Homework == nil || m.Homework.Brief != "do the thing" {
		t.Errorf("homework not decoded: %+v", m.Homework)
	}
	if !courses[0].Preliminary {
		t.Error("preliminary flag lost")
	}
	if got := m.Topics[0].Body; !strings.Contains(got, "[QUIZ: q1]") {
		t.Errorf("topic body mangled: %q", got)
	}
}

func TestLoadCatalogRejectsDuplicates(t *testing.T) {
	path := writeCatalog(t, `
courses:
  - id: c1
    title: A
    modules:
      - id: m1
        title: M
        topics: [{id: t1, title: T, body: x}]
  - id: c2
    title: B
    modules:
      - id: m1
        title: M again
        topics: [{id: t2, title: T, body: x}]
`)
	if _, err := LoadCatalog(path); err == nil || !strings.Contains(err.Error(), "duplicate module id") {
		t.Errorf("err = %v, want duplicate module id", err)
	}
}

func TestInMemoryRepoNormalizesPositions(t *testing.T) {
	repo := NewInMemoryRepo([]Course{{
		ID:    "c1",
		Title: "C",
		Modules: []Module{
			{ID: "m1", Title: "M1", Topics: []Topic{{ID: "t1", Title: "T1"}, {ID: "t2", Title: "T2"}}},
			{ID: "m2", Title: "M2", Topics: []Topic{{ID: "t3", Title: "T3"}}},
		},
	}})

	ctx := context.Background()
	m2, err := repo.GetModule(ctx, "m2")
	if err != nil {
		t.Fatal(err)
	}
	if m2.Position != 1 || m2.CourseID != "c1" {
		t.Errorf("module not normalized: %+v", m2)
	}
	tp, err := repo.GetTopic(ctx, "t2")
	if err != nil {
		t.Fatal(err)
	}
	if tp.Position != 1 || tp.ModuleID != "m1" {
		t.Errorf("topic not normalized: %+v", tp)
	}
	if _, err := repo.GetTopic(ctx, "nope"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if c, err := repo.CourseOf(ctx, "m2"); err != nil || c.ID != "c1" {
		t.Errorf("CourseOf = %v, %v", c, err)
	}
}
