package progress

import "time"

// Status is the persisted module status. Locked is derived at read time by
// the unlock policy and is never written to a store.
type Status string

const (
	StatusLocked     Status = "locked"
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var statusRank = map[Status]int{
	StatusNotStarted: 0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// HomeworkStatus is the homework sub-state, independent of module status.
type HomeworkStatus string

const (
	HomeworkNotSubmitted HomeworkStatus = "not_submitted"
	HomeworkSubmitted    HomeworkStatus = "submitted"
	HomeworkApproved     HomeworkStatus = "approved"
	HomeworkRejected     HomeworkStatus = "rejected"
)

type QuizResult struct {
	Selection []int `json:"selection"`
	Correct   bool  `json:"correct"`
}

type HomeworkState struct {
	URL           string         `json:"url"`
	Notes         string         `json:"notes,omitempty"`
	Status        HomeworkStatus `json:"status"`
	MentorComment string         `json:"mentor_comment,omitempty"`
}

// Record is the per-learner-per-module progression state, keyed by the
// composite (LearnerID, ModuleID). It is the single source of truth for a
// learner's position in a module.
type Record struct {
	LearnerID string `json:"learner_id"`
	ModuleID  string `json:"module_id"`
	Status    Status `json:"status"`
	// CompletedTopics is the set of finished topic ids.
	CompletedTopics map[string]bool `json:"completed_topics"`
	// TopicCursor maps topic id to the index of the last revealed page.
	TopicCursor map[string]int `json:"topic_cursor"`
	// QuizResults maps quiz id to the stored selection and verdict.
	QuizResults map[string]QuizResult `json:"quiz_results"`
	// CompletedExercises is the set of exercise ids that have passed all
	// criteria at least once; membership is permanent.
	CompletedExercises map[string]bool `json:"completed_exercises"`
	Homework           *HomeworkState  `json:"homework,omitempty"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func NewRecord(learnerID, moduleID string) Record {
	return Record{
		LearnerID:          learnerID,
		ModuleID:           moduleID,
		Status:             StatusNotStarted,
		CompletedTopics:    map[string]bool{},
		TopicCursor:        map[string]int{},
		QuizResults:        map[string]QuizResult{},
		CompletedExercises: map[string]bool{},
	}
}

// ensureMaps replaces nil collections after deserialization.
func (r *Record) ensureMaps() {
	if r.CompletedTopics == nil {
		r.CompletedTopics = map[string]bool{}
	}
	if r.TopicCursor == nil {
		r.TopicCursor = map[string]int{}
	}
	if r.QuizResults == nil {
		r.QuizResults = map[string]QuizResult{}
	}
	if r.CompletedExercises == nil {
		r.CompletedExercises = map[string]bool{}
	}
}

// Clone deep-copies the record so stores can hand out mutation-safe copies.
func (r Record) Clone() Record {
	out := r
	out.CompletedTopics = copyBoolSet(r.CompletedTopics)
	out.TopicCursor = copyIntMap(r.TopicCursor)
	out.CompletedExercises = copyBoolSet(r.CompletedExercises)
	out.QuizResults = make(map[string]QuizResult, len(r.QuizResults))
	for k, v := range r.QuizResults {
		v.Selection = append([]int(nil), v.Selection...)
		out.QuizResults[k] = v
	}
	if r.Homework != nil {
		hw := *r.Homework
		out.Homework = &hw
	}
	return out
}

// Merge folds an updated record into the prior one with the additive rules
// from the concurrency model: set union for completed topics/exercises,
// per-key max for cursors, sticky-correct for quiz results and forward-only
// status. Fields with no monotonic merge (homework, notes) take the updated
// value wholesale.
func Merge(prior, updated Record) Record {
	out := updated.Clone()
	for id := range prior.CompletedTopics {
		out.CompletedTopics[id] = true
	}
	for id := range prior.CompletedExercises {
		out.CompletedExercises[id] = true
	}
	for id, cur := range prior.TopicCursor {
		if cur > out.TopicCursor[id] {
			out.TopicCursor[id] = cur
		}
	}
	for id, prev := range prior.QuizResults {
		got, ok := out.QuizResults[id]
		if !ok {
			out.QuizResults[id] = prev
			continue
		}
		if prev.Correct && !got.Correct {
			got.Correct = true
			out.QuizResults[id] = got
		}
	}
	if statusRank[prior.Status] > statusRank[out.Status] {
		out.Status = prior.Status
	}
	if prior.UpdatedAt.After(out.UpdatedAt) {
		out.UpdatedAt = prior.UpdatedAt
	}
	return out
}

func copyBoolSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
