package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one append-only row of learner activity, suitable for later
// cross-site sync. Key is the natural key (learnerID|moduleID).
type Event struct {
	Offset    int64
	ID        string
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID}
}

// Record marshals the payload and appends a row. Implements the engine's
// event sink.
func (r *EventRepo) Record(ctx context.Context, typ, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (id, site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.NewString(), r.siteID, typ, key, string(data), time.Now().Unix())
	return err
}

// Since returns events after the given offset, oldest first.
func (r *EventRepo) Since(ctx context.Context, offset int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, id, site_id, typ, key, data, created_at
		   FROM event_log WHERE seq > $1 ORDER BY seq ASC LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.ID, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
