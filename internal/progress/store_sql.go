package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLStore persists records in the progress table, one row per
// (learner_id, module_id), keyed maps serialized as JSON text. Works
// against sqlite and postgres with $n placeholders.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, now: time.Now}
}

const progressCols = `learner_id, module_id, status, completed_topics_json, topic_cursor_json, quiz_results_json, completed_exercises_json, homework_json, updated_at`

func (s *SQLStore) Load(ctx context.Context, learnerID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressCols+` FROM progress WHERE learner_id=$1`, learnerID)
	if err != nil {
		return nil, persistence(err)
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, persistence(err)
		}
		out = append(out, rec)
	}
	return out, persistence(rows.Err())
}

func (s *SQLStore) Get(ctx context.Context, learnerID, moduleID string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+progressCols+` FROM progress WHERE learner_id=$1 AND module_id=$2`,
		learnerID, moduleID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, notFoundf("progress %s/%s", learnerID, moduleID)
	}
	if err != nil {
		return Record{}, persistence(err)
	}
	return rec, nil
}

// Mutate runs the read-modify-write inside one transaction so rapid
// successive actions cannot lose updates. The merged result is written with
// an upsert on the composite key.
func (s *SQLStore) Mutate(ctx context.Context, learnerID, moduleID string, fn func(*Record) error) (Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, persistence(err)
	}
	defer tx.Rollback()

	prior, err := s.getForUpdate(ctx, tx, learnerID, moduleID)
	fresh := false
	if errors.Is(err, sql.ErrNoRows) {
		prior = NewRecord(learnerID, moduleID)
		fresh = true
	} else if err != nil {
		return Record{}, persistence(err)
	}

	rec := prior.Clone()
	if err := fn(&rec); err != nil {
		return Record{}, err
	}
	rec.UpdatedAt = s.now()
	merged := rec
	if !fresh {
		merged = Merge(prior, rec)
	}
	if err := s.upsert(ctx, tx, merged); err != nil {
		return Record{}, persistence(err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, persistence(err)
	}
	return merged, nil
}

func (s *SQLStore) getForUpdate(ctx context.Context, tx *sql.Tx, learnerID, moduleID string) (Record, error) {
	q := `SELECT ` + progressCols + ` FROM progress WHERE learner_id=$1 AND module_id=$2`
	if s.driver == "postgres" {
		q += ` FOR UPDATE`
	}
	return scanRecord(tx.QueryRowContext(ctx, q, learnerID, moduleID))
}

func (s *SQLStore) upsert(ctx context.Context, tx *sql.Tx, r Record) error {
	topics, err := json.Marshal(r.CompletedTopics)
	if err != nil {
		return err
	}
	cursor, err := json.Marshal(r.TopicCursor)
	if err != nil {
		return err
	}
	quizzes, err := json.Marshal(r.QuizResults)
	if err != nil {
		return err
	}
	exercises, err := json.Marshal(r.CompletedExercises)
	if err != nil {
		return err
	}
	var homework sql.NullString
	if r.Homework != nil {
		buf, err := json.Marshal(r.Homework)
		if err != nil {
			return err
		}
		homework = sql.NullString{String: string(buf), Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO progress (`+progressCols+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (learner_id, module_id) DO UPDATE SET
		   status=EXCLUDED.status,
		   completed_topics_json=EXCLUDED.completed_topics_json,
		   topic_cursor_json=EXCLUDED.topic_cursor_json,
		   quiz_results_json=EXCLUDED.quiz_results_json,
		   completed_exercises_json=EXCLUDED.completed_exercises_json,
		   homework_json=EXCLUDED.homework_json,
		   updated_at=EXCLUDED.updated_at`,
		r.LearnerID, r.ModuleID, string(r.Status), string(topics), string(cursor),
		string(quizzes), string(exercises), homework, r.UpdatedAt.Unix())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		status    string
		topics    string
		cursor    string
		quizzes   string
		exercises string
		homework  sql.NullString
		updatedAt int64
	)
	if err := row.Scan(&rec.LearnerID, &rec.ModuleID, &status, &topics, &cursor,
		&quizzes, &exercises, &homework, &updatedAt); err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	if err := json.Unmarshal([]byte(topics), &rec.CompletedTopics); err != nil {
		rec.CompletedTopics = map[string]bool{}
	}
	if err := json.Unmarshal([]byte(cursor), &rec.TopicCursor); err != nil {
		rec.TopicCursor = map[string]int{}
	}
	if err := json.Unmarshal([]byte(quizzes), &rec.QuizResults); err != nil {
		rec.QuizResults = map[string]QuizResult{}
	}
	if err := json.Unmarshal([]byte(exercises), &rec.CompletedExercises); err != nil {
		rec.CompletedExercises = map[string]bool{}
	}
	if homework.Valid {
		var hw HomeworkState
		if err := json.Unmarshal([]byte(homework.String), &hw); err == nil {
			rec.Homework = &hw
		}
	}
	rec.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	rec.ensureMaps()
	return rec, nil
}
