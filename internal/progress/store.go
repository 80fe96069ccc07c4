package progress

import (
	"context"
	"sync"
	"time"
)

// Store persists progression records keyed by (learner, module).
type Store interface {
	// Load returns every record for a learner.
	Load(ctx context.Context, learnerID string) ([]Record, error)
	// Get returns one record, ErrNotFound if the learner has not touched
	// the module yet.
	Get(ctx context.Context, learnerID, moduleID string) (Record, error)
	// Mutate applies fn to the current record (a fresh one if absent) and
	// upserts the result as a single logical read-modify-write. The stored
	// row is merged additively against concurrent writers; see Merge.
	Mutate(ctx context.Context, learnerID, moduleID string, fn func(*Record) error) (Record, error)
}

type memoryStore struct {
	mu      sync.Mutex
	records map[string]Record // learnerID|moduleID
	now     func() time.Time
}

func NewInMemoryStore() Store {
	return &memoryStore{records: map[string]Record{}, now: time.Now}
}

func memKey(learnerID, moduleID string) string { return learnerID + "|" + moduleID }

func (m *memoryStore) Load(ctx context.Context, learnerID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, r := range m.records {
		if r.LearnerID == learnerID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *memoryStore) Get(ctx context.Context, learnerID, moduleID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[memKey(learnerID, moduleID)]
	if !ok {
		return Record{}, notFoundf("progress %s/%s", learnerID, moduleID)
	}
	return r.Clone(), nil
}

func (m *memoryStore) Mutate(ctx context.Context, learnerID, moduleID string, fn func(*Record) error) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(learnerID, moduleID)
	prior, ok := m.records[key]
	if !ok {
		prior = NewRecord(learnerID, moduleID)
	}
	rec := prior.Clone()
	if err := fn(&rec); err != nil {
		// failed mutations leave the stored record untouched
		return Record{}, err
	}
	rec.UpdatedAt = m.now()
	merged := Merge(prior, rec)
	m.records[key] = merged
	return merged.Clone(), nil
}
