package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/codetrail/codetrail-lms/internal/assessment"
	"github.com/codetrail/codetrail-lms/internal/content"
)

// MentorRole is the role allowed to review homework.
const MentorRole = "admin"

// Event types appended to the sink on state changes.
const (
	EventTopicCompleted    = "TopicCompleted"
	EventModuleCompleted   = "ModuleCompleted"
	EventHomeworkSubmitted = "HomeworkSubmitted"
	EventHomeworkReviewed  = "HomeworkReviewed"
)

// EventSink receives progression events for auditing/sync. Failures are
// logged, never surfaced to the learner.
type EventSink interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }
func WithEvents(s EventSink) Option   { return func(e *Engine) { e.events = s } }

// Engine owns every progression transition. All callers go through it; no
// other component computes status on its own.
type Engine struct {
	catalog content.Repo
	store   Store
	rules   *assessment.Registry
	events  EventSink
	log     *zap.Logger
}

func NewEngine(catalog content.Repo, store Store, rules *assessment.Registry, opts ...Option) *Engine {
	e := &Engine{catalog: catalog, store: store, rules: rules, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// TopicView is a learner's window onto a topic: the pages revealed so far
// plus total count for the progress strip.
type TopicView struct {
	Topic      content.Topic  `json:"topic"`
	Pages      []content.Page `json:"pages"`
	Cursor     int            `json:"cursor"`
	TotalPages int            `json:"total_pages"`
	Completed  bool           `json:"completed"`
}

// Pages segments a topic body. Derived on every call, never cached.
func (e *Engine) Pages(ctx context.Context, topicID string) ([]content.Page, error) {
	t, err := e.catalog.GetTopic(ctx, topicID)
	if err != nil {
		return nil, WrapContentErr(err)
	}
	return content.Segment(t.Body), nil
}

// ViewTopic returns the learner's revealed pages and records the first
// interaction: viewing a topic of a not-started module moves it to
// in-progress and pins a cursor for resuming.
func (e *Engine) ViewTopic(ctx context.Context, learnerID, topicID string) (TopicView, error) {
	t, err := e.catalog.GetTopic(ctx, topicID)
	if err != nil {
		return TopicView{}, WrapContentErr(err)
	}
	pages := content.Segment(t.Body)
	rec, err := e.store.Mutate(ctx, learnerID, t.ModuleID, func(r *Record) error {
		if r.Status == StatusNotStarted {
			r.Status = StatusInProgress
		}
		if _, ok := r.TopicCursor[t.ID]; !ok {
			r.TopicCursor[t.ID] = 0
		}
		return nil
	})
	if err != nil {
		return TopicView{}, err
	}
	cur := rec.TopicCursor[t.ID]
	revealed := cur + 1
	if revealed > len(pages) {
		revealed = len(pages)
	}
	return TopicView{
		Topic:      t,
		Pages:      pages[:revealed],
		Cursor:     cur,
		TotalPages: len(pages),
		Completed:  rec.CompletedTopics[t.ID],
	}, nil
}

// GetProgress returns the stored record, or a fresh not-started one when
// the learner has not touched the module. The fresh record is not persisted.
func (e *Engine) GetProgress(ctx context.Context, learnerID, moduleID string) (Record, error) {
	if _, err := e.catalog.GetModule(ctx, moduleID); err != nil {
		return Record{}, WrapContentErr(err)
	}
	rec, err := e.store.Get(ctx, learnerID, moduleID)
	if errors.Is(err, ErrNotFound) {
		return NewRecord(learnerID, moduleID), nil
	}
	return rec, err
}

// Advance moves the learner's cursor past the current page of a topic. The
// page's bound assessment, if any, must already be passed. Reaching the end
// of the last page completes the topic; completing every topic of a module
// without homework completes the module. Calling Advance again with no
// intervening state change is a no-op.
func (e *Engine) Advance(ctx context.Context, learnerID, moduleID, topicID string) (Record, error) {
	module, err := e.catalog.GetModule(ctx, moduleID)
	if err != nil {
		return Record{}, WrapContentErr(err)
	}
	var topic *content.Topic
	for i := range module.Topics {
		if module.Topics[i].ID == topicID {
			topic = &module.Topics[i]
			break
		}
	}
	if topic == nil {
		return Record{}, notFoundf("topic %s in module %s", topicID, moduleID)
	}
	pages := content.Segment(topic.Body)

	var topicDone, moduleDone bool
	rec, err := e.store.Mutate(ctx, learnerID, moduleID, func(r *Record) error {
		if r.Status == StatusNotStarted {
			r.Status = StatusInProgress
		}
		cur := r.TopicCursor[topic.ID]
		if cur > len(pages)-1 {
			cur = len(pages) - 1
		}
		if r.CompletedTopics[topic.ID] && cur >= len(pages)-1 {
			return nil // saturated
		}
		if err := checkGate(r, pages[cur]); err != nil {
			return err
		}
		if cur < len(pages)-1 {
			r.TopicCursor[topic.ID] = cur + 1
			return nil
		}
		// final page of the topic
		if !r.CompletedTopics[topic.ID] {
			r.CompletedTopics[topic.ID] = true
			topicDone = true
		}
		if allTopicsCompleted(module, r) && module.Homework == nil && r.Status != StatusCompleted {
			// modules with homework stay in progress until approval
			r.Status = StatusCompleted
			moduleDone = true
		}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	if topicDone {
		e.emit(ctx, EventTopicCompleted, learnerID+"|"+moduleID, map[string]string{"topic_id": topicID})
	}
	if moduleDone {
		e.emit(ctx, EventModuleCompleted, learnerID+"|"+moduleID, map[string]string{"module_id": moduleID})
	}
	return rec, nil
}

func checkGate(r *Record, page content.Page) error {
	if page.QuizID != "" && !r.QuizResults[page.QuizID].Correct {
		return invalidf("quiz %s not passed", page.QuizID)
	}
	if page.ExerciseID != "" && !r.CompletedExercises[page.ExerciseID] {
		return invalidf("exercise %s not completed", page.ExerciseID)
	}
	return nil
}

func allTopicsCompleted(m content.Module, r *Record) bool {
	for i := range m.Topics {
		if !r.CompletedTopics[m.Topics[i].ID] {
			return false
		}
	}
	return len(m.Topics) > 0
}

// RecordQuizResult evaluates a quiz selection and stores the verdict. A
// previously correct result stays correct regardless of later attempts.
func (e *Engine) RecordQuizResult(ctx context.Context, learnerID, moduleID, quizID string, selection []int) ([]assessment.Criterion, Record, error) {
	if _, err := e.catalog.GetModule(ctx, moduleID); err != nil {
		return nil, Record{}, WrapContentErr(err)
	}
	criteria, err := e.rules.Evaluate(quizID, assessment.Submission{Selection: selection})
	if errors.Is(err, assessment.ErrUnknownAssessment) {
		return nil, Record{}, notFoundf("quiz %s", quizID)
	}
	if err != nil {
		return nil, Record{}, err
	}
	passed := assessment.AllPassed(criteria)
	rec, err := e.store.Mutate(ctx, learnerID, moduleID, func(r *Record) error {
		if r.Status == StatusNotStarted {
			r.Status = StatusInProgress
		}
		prev := r.QuizResults[quizID]
		r.QuizResults[quizID] = QuizResult{
			Selection: append([]int(nil), selection...),
			Correct:   passed || prev.Correct,
		}
		return nil
	})
	if err != nil {
		return nil, Record{}, err
	}
	return criteria, rec, nil
}

// RecordExerciseResult evaluates submitted source against the exercise's
// criteria. Every criterion is evaluated independently; an all-pass run
// marks the exercise complete permanently.
func (e *Engine) RecordExerciseResult(ctx context.Context, learnerID, moduleID, exerciseID, source string) ([]assessment.Criterion, Record, error) {
	if _, err := e.catalog.GetModule(ctx, moduleID); err != nil {
		return nil, Record{}, WrapContentErr(err)
	}
	criteria, err := e.rules.Evaluate(exerciseID, assessment.Submission{Source: source})
	if errors.Is(err, assessment.ErrUnknownAssessment) {
		return nil, Record{}, notFoundf("exercise %s", exerciseID)
	}
	if err != nil {
		return nil, Record{}, err
	}
	passed := assessment.AllPassed(criteria)
	rec, err := e.store.Mutate(ctx, learnerID, moduleID, func(r *Record) error {
		if r.Status == StatusNotStarted {
			r.Status = StatusInProgress
		}
		if passed {
			r.CompletedExercises[exerciseID] = true
		}
		return nil
	})
	if err != nil {
		return nil, Record{}, err
	}
	return criteria, rec, nil
}

// SubmitHomework files or re-files the learner's homework for review. The
// mentor's previous comment stays visible until the next review.
func (e *Engine) SubmitHomework(ctx context.Context, learnerID, moduleID, url, notes string) (Record, error) {
	module, err := e.catalog.GetModule(ctx, moduleID)
	if err != nil {
		return Record{}, WrapContentErr(err)
	}
	if module.Homework == nil {
		return Record{}, notFoundf("module %s has no homework", moduleID)
	}
	if strings.TrimSpace(url) == "" {
		return Record{}, validationf("homework url required")
	}
	rec, err := e.store.Mutate(ctx, learnerID, moduleID, func(r *Record) error {
		if r.Status == StatusNotStarted {
			r.Status = StatusInProgress
		}
		hw := r.Homework
		if hw == nil {
			hw = &HomeworkState{Status: HomeworkNotSubmitted}
		}
		if hw.Status == HomeworkApproved {
			return invalidf("homework already approved")
		}
		hw.URL = url
		hw.Notes = notes
		hw.Status = HomeworkSubmitted
		r.Homework = hw
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	e.emit(ctx, EventHomeworkSubmitted, learnerID+"|"+moduleID, map[string]string{"url": url})
	return rec, nil
}

// ReviewHomework records a mentor verdict on a submitted homework. Approval
// also force-completes the module regardless of topic state; rejection
// touches only the homework sub-state.
func (e *Engine) ReviewHomework(ctx context.Context, learnerID, moduleID, role string, approve bool, comment string) (Record, error) {
	if role != MentorRole {
		return Record{}, fmt.Errorf("%w: mentor role required", ErrUnauthorized)
	}
	module, err := e.catalog.GetModule(ctx, moduleID)
	if err != nil {
		return Record{}, WrapContentErr(err)
	}
	if module.Homework == nil {
		return Record{}, notFoundf("module %s has no homework", moduleID)
	}
	rec, err := e.store.Mutate(ctx, learnerID, moduleID, func(r *Record) error {
		hw := r.Homework
		if hw == nil || hw.Status == HomeworkNotSubmitted {
			return invalidf("homework not submitted")
		}
		if hw.Status != HomeworkSubmitted {
			return invalidf("homework already reviewed")
		}
		hw.MentorComment = comment
		if approve {
			hw.Status = HomeworkApproved
			r.Status = StatusCompleted
		} else {
			hw.Status = HomeworkRejected
		}
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	decision := "rejected"
	if approve {
		decision = "approved"
	}
	e.emit(ctx, EventHomeworkReviewed, learnerID+"|"+moduleID, map[string]string{"decision": decision})
	if approve {
		e.emit(ctx, EventModuleCompleted, learnerID+"|"+moduleID, map[string]string{"module_id": moduleID})
	}
	return rec, nil
}

// Locked reports whether a module is reachable for the learner.
func (e *Engine) Locked(ctx context.Context, learnerID, moduleID string) (bool, error) {
	course, err := e.catalog.CourseOf(ctx, moduleID)
	if err != nil {
		return false, WrapContentErr(err)
	}
	records, err := e.recordsByModule(ctx, learnerID)
	if err != nil {
		return false, err
	}
	return IsLocked(course, moduleID, records), nil
}

// CourseCompletion derives the learner's 0..100 figure for a course.
func (e *Engine) CourseCompletion(ctx context.Context, learnerID, courseID string) (int, error) {
	course, err := e.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return 0, WrapContentErr(err)
	}
	records, err := e.recordsByModule(ctx, learnerID)
	if err != nil {
		return 0, err
	}
	return CourseCompletionPercent(course, records), nil
}

// ModuleOverview annotates one module for the dashboard.
type ModuleOverview struct {
	ModuleID    string         `json:"module_id"`
	Title       string         `json:"title"`
	Position    int            `json:"position"`
	Status      Status         `json:"status"`
	Percent     int            `json:"percent"`
	HasHomework bool           `json:"has_homework"`
	Homework    HomeworkStatus `json:"homework_status,omitempty"`
}

type CourseOverview struct {
	CourseID string           `json:"course_id"`
	Title    string           `json:"title"`
	Percent  int              `json:"percent"`
	Modules  []ModuleOverview `json:"modules"`
}

// Overview builds the annotated module list for one course: derived lock
// state, stored status, per-module percent and homework sub-state.
func (e *Engine) Overview(ctx context.Context, learnerID, courseID string) (CourseOverview, error) {
	course, err := e.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return CourseOverview{}, WrapContentErr(err)
	}
	records, err := e.recordsByModule(ctx, learnerID)
	if err != nil {
		return CourseOverview{}, err
	}
	out := CourseOverview{
		CourseID: course.ID,
		Title:    course.Title,
		Percent:  CourseCompletionPercent(course, records),
	}
	for i := range course.Modules {
		m := course.Modules[i]
		rec := records[m.ID]
		mo := ModuleOverview{
			ModuleID:    m.ID,
			Title:       m.Title,
			Position:    m.Position,
			Status:      EffectiveStatus(course, m.ID, records),
			Percent:     ModuleCompletionPercent(m, rec),
			HasHomework: m.Homework != nil,
		}
		if m.Homework != nil {
			mo.Homework = HomeworkNotSubmitted
			if rec.Homework != nil {
				mo.Homework = rec.Homework.Status
			}
		}
		out.Modules = append(out.Modules, mo)
	}
	return out, nil
}

func (e *Engine) recordsByModule(ctx context.Context, learnerID string) (map[string]Record, error) {
	recs, err := e.store.Load(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(recs))
	for _, r := range recs {
		out[r.ModuleID] = r
	}
	return out, nil
}

func (e *Engine) emit(ctx context.Context, typ, key string, payload any) {
	if e.events == nil {
		return
	}
	if err := e.events.Record(ctx, typ, key, payload); err != nil {
		e.log.Warn("event append failed", zap.String("type", typ), zap.Error(err))
	}
}

// WrapContentErr translates catalog lookup failures into the engine's
// typed NotFound so callers map them uniformly.
func WrapContentErr(err error) error {
	if errors.Is(err, content.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
