package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/codetrail/codetrail-lms/internal/assessment"
	"github.com/codetrail/codetrail-lms/internal/content"
)

// captureSink records emitted events for assertions.
type captureSink struct {
	types []string
}

func (s *captureSink) Record(ctx context.Context, typ, key string, payload any) error {
	s.types = append(s.types, typ)
	return nil
}

func (s *captureSink) saw(typ string) bool {
	for _, t := range s.types {
		if t == typ {
			return true
		}
	}
	return false
}

// fixtureCatalog: module m1 has a quiz-gated topic and a plain one and no
// homework; module m2 has an exercise-gated topic and homework.
func fixtureCatalog() content.Repo {
	return content.NewInMemoryRepo([]content.Course{{
		ID:    "go-basics",
		Title: "Go Basics",
		Modules: []content.Module{
			{
				ID:    "m1",
				Title: "First Steps",
				Topics: []content.Topic{
					{ID: "t1", Title: "Hello", Body: "intro [QUIZ: q1] rest"},
					{ID: "t2", Title: "Values", Body: "just text"},
				},
			},
			{
				ID:    "m2",
				Title: "Building",
				Topics: []content.Topic{
					{ID: "t3", Title: "Practice", Body: "write it [CHALLENGE: ex1]"},
				},
				Homework: &content.Homework{Brief: "build a page"},
			},
		},
	}})
}

func fixtureRules() *assessment.Registry {
	reg := assessment.NewRegistry()
	reg.Register("q1", assessment.QuizRule{Correct: []int{1}})
	reg.Register("ex1", assessment.CodeRule{Checks: []assessment.Check{
		assessment.Contains("greet", "Says hello", "hello"),
	}})
	return reg
}

func newTestEngine(t *testing.T) (*Engine, *captureSink) {
	t.Helper()
	sink := &captureSink{}
	eng := NewEngine(fixtureCatalog(), NewInMemoryStore(), fixtureRules(), WithEvents(sink))
	return eng, sink
}

func TestViewTopicStartsModule(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	view, err := eng.ViewTopic(ctx, "alice", "t1")
	if err != nil {
		t.Fatalf("ViewTopic: %v", err)
	}
	if view.TotalPages != 2 || len(view.Pages) != 1 || view.Cursor != 0 {
		t.Errorf("view = %+v, want 1 of 2 pages revealed at cursor 0", view)
	}
	if view.Pages[0].QuizID != "q1" {
		t.Errorf("first page quiz = %q, want q1", view.Pages[0].QuizID)
	}

	rec, err := eng.GetProgress(ctx, "alice", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusInProgress {
		t.Errorf("status after first view = %s, want in_progress", rec.Status)
	}

	if _, err := eng.ViewTopic(ctx, "alice", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown topic err = %v, want ErrNotFound", err)
	}
}

func TestGetProgressFreshRecordNotPersisted(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	rec, err := eng.GetProgress(ctx, "bob", "m1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if rec.Status != StatusNotStarted || rec.LearnerID != "bob" {
		t.Errorf("fresh record = %+v", rec)
	}

	if _, err := eng.GetProgress(ctx, "bob", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown module err = %v, want ErrNotFound", err)
	}
}

func TestAdvanceGatedByQuiz(t *testing.T) {
	eng, sink := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.Advance(ctx, "alice", "m1", "t1")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("advance past unanswered quiz err = %v, want ErrInvalidTransition", err)
	}

	// A wrong answer does not open the gate.
	criteria, _, err := eng.RecordQuizResult(ctx, "alice", "m1", "q1", []int{0})
	if err != nil {
		t.Fatal(err)
	}
	if assessment.AllPassed(criteria) {
		t.Fatal("wrong selection graded as passed")
	}
	if _, err := eng.Advance(ctx, "alice", "m1", "t1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("advance after wrong answer err = %v", err)
	}

	if _, _, err := eng.RecordQuizResult(ctx, "alice", "m1", "q1", []int{1}); err != nil {
		t.Fatal(err)
	}
	rec, err := eng.Advance(ctx, "alice", "m1", "t1")
	if err != nil {
		t.Fatalf("advance after correct answer: %v", err)
	}
	if rec.TopicCursor["t1"] != 1 {
		t.Errorf("cursor = %d, want 1", rec.TopicCursor["t1"])
	}

	// Final page completes the topic but not the module: t2 remains.
	rec, err = eng.Advance(ctx, "alice", "m1", "t1")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.CompletedTopics["t1"] {
		t.Error("topic t1 not completed at last page")
	}
	if rec.Status != StatusInProgress {
		t.Errorf("module status = %s, want in_progress", rec.Status)
	}
	if !sink.saw(EventTopicCompleted) {
		t.Error("TopicCompleted event not emitted")
	}
	if sink.saw(EventModuleCompleted) {
		t.Error("ModuleCompleted emitted with a topic outstanding")
	}
}

func TestAdvanceCompletesModuleWithoutHomework(t *testing.T) {
	eng, sink := newTestEngine(t)
	ctx := context.Background()

	mustFinishM1(t, eng, "alice")

	rec, err := eng.GetProgress(ctx, "alice", "m1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != StatusCompleted {
		t.Errorf("module status = %s, want completed", rec.Status)
	}
	if !sink.saw(EventModuleCompleted) {
		t.Error("ModuleCompleted event not emitted")
	}

	// Advancing a finished topic again is a saturated no-op.
	again, err := eng.Advance(ctx, "alice", "m1", "t2")
	if err != nil {
		t.Fatalf("repeat advance: %v", err)
	}
	if again.TopicCursor["t2"] != 0 || !again.CompletedTopics["t2"] {
		t.Errorf("repeat advance changed state: %+v", again)
	}
}

// mustFinishM1 drives alice through both topics of module m1.
func mustFinishM1(t *testing.T, eng *Engine, learner string) {
	t.Helper()
	ctx := context.Background()
	if _, _, err := eng.RecordQuizResult(ctx, learner, "m1", "q1", []int{1}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := eng.Advance(ctx, learner, "m1", "t1"); err != nil {
			t.Fatalf("advance t1: %v", err)
		}
	}
	if _, err := eng.Advance(ctx, learner, "m1", "t2"); err != nil {
		t.Fatalf("advance t2: %v", err)
	}
}

func TestQuizResultIsSticky(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	if _, _, err := eng.RecordQuizResult(ctx, "alice", "m1", "q1", []int{1}); err != nil {
		t.Fatal(err)
	}
	_, rec, err := eng.RecordQuizResult(ctx, "alice", "m1", "q1", []int{0})
	if err != nil {
		t.Fatal(err)
	}
	got := rec.QuizResults["q1"]
	if !got.Correct {
		t.Error("correct verdict lost after a later wrong attempt")
	}
	if len(got.Selection) != 1 || got.Selection[0] != 0 {
		t.Errorf("latest selection not stored: %v", got.Selection)
	}

	if _, _, err := eng.RecordQuizResult(ctx, "alice", "m1", "ghost", []int{1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown quiz err = %v, want ErrNotFound", err)
	}
}

func TestExerciseGate(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	criteria, rec, err := eng.RecordExerciseResult(ctx, "alice", "m2", "ex1", "no greeting here")
	if err != nil {
		t.Fatal(err)
	}
	if assessment.AllPassed(criteria) || rec.CompletedExercises["ex1"] {
		t.Fatal("failing source marked the exercise complete")
	}
	if _, err := eng.Advance(ctx, "alice", "m2", "t3"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("advance past failed exercise err = %v", err)
	}

	_, rec, err = eng.RecordExerciseResult(ctx, "alice", "m2", "ex1", "say hello world")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.CompletedExercises["ex1"] {
		t.Fatal("passing source did not complete the exercise")
	}

	rec, err = eng.Advance(ctx, "alice", "m2", "t3")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.CompletedTopics["t3"] {
		t.Error("topic not completed")
	}
	// Homework pending keeps the module in progress.
	if rec.Status != StatusInProgress {
		t.Errorf("module status = %s, want in_progress until homework approval", rec.Status)
	}
}

func TestHomeworkLifecycle(t *testing.T) {
	eng, sink := newTestEngine(t)
	ctx := context.Background()

	// Review before any submission.
	if _, err := eng.ReviewHomework(ctx, "alice", "m2", MentorRole, true, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("review of unsubmitted homework err = %v", err)
	}

	if _, err := eng.SubmitHomework(ctx, "alice", "m2", "   ", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank url err = %v, want ErrValidation", err)
	}
	if _, err := eng.SubmitHomework(ctx, "alice", "m1", "https://example.com/p", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("submit to homework-less module err = %v, want ErrNotFound", err)
	}

	rec, err := eng.SubmitHomework(ctx, "alice", "m2", "https://example.com/p", "first try")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Homework == nil || rec.Homework.Status != HomeworkSubmitted {
		t.Fatalf("homework state after submit: %+v", rec.Homework)
	}
	if !sink.saw(EventHomeworkSubmitted) {
		t.Error("HomeworkSubmitted event not emitted")
	}

	if _, err := eng.ReviewHomework(ctx, "alice", "m2", "student", false, "nope"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-mentor review err = %v, want ErrUnauthorized", err)
	}

	rec, err = eng.ReviewHomework(ctx, "alice", "m2", MentorRole, false, "add a heading")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rec.Homework.Status != HomeworkRejected || rec.Homework.MentorComment != "add a heading" {
		t.Errorf("homework after rejection: %+v", rec.Homework)
	}
	if rec.Status == StatusCompleted {
		t.Error("rejection completed the module")
	}

	// A rejected homework cannot be re-reviewed without a resubmission.
	if _, err := eng.ReviewHomework(ctx, "alice", "m2", MentorRole, true, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("re-review of rejected homework err = %v", err)
	}

	rec, err = eng.SubmitHomework(ctx, "alice", "m2", "https://example.com/p2", "fixed")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if rec.Homework.Status != HomeworkSubmitted {
		t.Errorf("resubmit status = %s", rec.Homework.Status)
	}
	if rec.Homework.MentorComment != "add a heading" {
		t.Error("mentor comment cleared before the next review")
	}

	rec, err = eng.ReviewHomework(ctx, "alice", "m2", MentorRole, true, "nice work")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if rec.Homework.Status != HomeworkApproved {
		t.Errorf("homework status = %s, want approved", rec.Homework.Status)
	}
	if rec.Status != StatusCompleted {
		t.Errorf("module status = %s, want completed on approval", rec.Status)
	}
	if !sink.saw(EventHomeworkReviewed) || !sink.saw(EventModuleCompleted) {
		t.Errorf("events after approval: %v", sink.types)
	}

	// Approved is terminal for both review and submission.
	if _, err := eng.ReviewHomework(ctx, "alice", "m2", MentorRole, false, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("re-review of approved homework err = %v", err)
	}
	if _, err := eng.SubmitHomework(ctx, "alice", "m2", "https://example.com/p3", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("submit after approval err = %v", err)
	}
}

func TestLockedAndOverview(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	locked, err := eng.Locked(ctx, "alice", "m2")
	if err != nil {
		t.Fatal(err)
	}
	if !locked {
		t.Error("m2 unlocked before m1 is completed")
	}

	mustFinishM1(t, eng, "alice")

	locked, err = eng.Locked(ctx, "alice", "m2")
	if err != nil {
		t.Fatal(err)
	}
	if locked {
		t.Error("m2 still locked after m1 completed")
	}

	ov, err := eng.Overview(ctx, "alice", "go-basics")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(ov.Modules) != 2 {
		t.Fatalf("overview modules = %d", len(ov.Modules))
	}
	if ov.Modules[0].Status != StatusCompleted || ov.Modules[0].Percent != 100 {
		t.Errorf("m1 overview = %+v", ov.Modules[0])
	}
	if ov.Modules[1].Status != StatusNotStarted || ov.Modules[1].Homework != HomeworkNotSubmitted {
		t.Errorf("m2 overview = %+v", ov.Modules[1])
	}
	if ov.Percent != 50 {
		t.Errorf("course percent = %d, want 50", ov.Percent)
	}

	pct, err := eng.CourseCompletion(ctx, "alice", "go-basics")
	if err != nil || pct != 50 {
		t.Errorf("CourseCompletion = %d, %v", pct, err)
	}
}
