package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`               // usually "student"
	Password string `json:"password,omitempty"` // plaintext optional (LAN-only)
}

// POST /users/bulk — upsert learner accounts from a JSON array. Passwords
// are bcrypt-hashed before storage; omitted passwords keep the old hash.
func BulkUpsertUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []userRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		n := 0
		for _, u := range rows {
			u.Username = strings.TrimSpace(u.Username)
			if u.Username == "" {
				continue
			}
			if u.ID == "" {
				u.ID = u.Username
			}
			if u.Role == "" {
				u.Role = "student"
			}
			if u.Password != "" {
				hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
				if err != nil {
					http.Error(w, "hash error", http.StatusInternalServerError)
					return
				}
				_, err = db.ExecContext(r.Context(),
					`INSERT INTO users (id, username, role, password_hash, created_at)
					 VALUES ($1,$2,$3,$4,$5)
					 ON CONFLICT (id) DO UPDATE SET username=EXCLUDED.username, role=EXCLUDED.role, password_hash=EXCLUDED.password_hash`,
					u.ID, u.Username, u.Role, string(hash), time.Now().Unix())
				if err != nil {
					http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
					return
				}
			} else {
				_, err := db.ExecContext(r.Context(),
					`UPDATE users SET username=$1, role=$2 WHERE id=$3`,
					u.Username, u.Role, u.ID)
				if err != nil {
					http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
					return
				}
			}
			n++
		}
		writeJSON(w, map[string]int{"upserted": n})
	}
}

// GET /users — id/username/role listing for the mentor dashboard.
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT id, username, role FROM users ORDER BY username`)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []userRow{}
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
				http.Error(w, "scan error", http.StatusInternalServerError)
				return
			}
			out = append(out, u)
		}
		writeJSON(w, out)
	}
}

// POST /users/change-password  { "old_password": "...", "new_password": "..." }
func ChangePasswordHandler(db *sql.DB) http.HandlerFunc {
	type req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		var body req
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewPassword == "" {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		var hash string
		err := db.QueryRowContext(r.Context(),
			`SELECT password_hash FROM users WHERE id=$1 OR username=$1`, sub).Scan(&hash)
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.OldPassword)) != nil {
			http.Error(w, "wrong password", http.StatusForbidden)
			return
		}
		newHash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "hash error", http.StatusInternalServerError)
			return
		}
		if _, err := db.ExecContext(r.Context(),
			`UPDATE users SET password_hash=$1 WHERE id=$2 OR username=$2`,
			string(newHash), sub); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]bool{"ok": true})
	}
}
