package content

// Catalog entities are read-only from the engine's point of view: they are
// loaded once at startup and never mutated by learner activity.

type Course struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	// Preliminary marks orientation content that is never ordinal-gated:
	// every module of a preliminary course is reachable from the start.
	Preliminary bool     `json:"preliminary,omitempty" yaml:"preliminary"`
	Modules     []Module `json:"modules" yaml:"modules"`
}

type Module struct {
	ID       string `json:"id" yaml:"id"`
	CourseID string `json:"course_id" yaml:"-"`
	// Position is the module's ordinal within its course, contiguous from 0.
	Position  int        `json:"position" yaml:"-"`
	Title     string     `json:"title" yaml:"title"`
	Topics    []Topic    `json:"topics" yaml:"topics"`
	Homework  *Homework  `json:"homework,omitempty" yaml:"homework"`
	Resources []Resource `json:"resources,omitempty" yaml:"resources"`
}

type Topic struct {
	ID       string `json:"id" yaml:"id"`
	ModuleID string `json:"module_id" yaml:"-"`
	Position int    `json:"position" yaml:"-"`
	Title    string `json:"title" yaml:"title"`
	// Body is raw marked-up text containing zero or more inline markers
	// ([QUIZ: id], [CHALLENGE: id], [NEXT]); see Segment.
	Body string `json:"-" yaml:"body"`
}

type Homework struct {
	Brief string `json:"brief" yaml:"brief"`
}

type Resource struct {
	Title string `json:"title" yaml:"title"`
	// Key addresses the file in the blob store.
	Key string `json:"key" yaml:"key"`
}
