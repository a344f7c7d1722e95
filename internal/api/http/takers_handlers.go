package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type takerRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`               // usually "student"
	Password string `json:"password,omitempty"` // plaintext, hashed on write
}

// POST /takers — admin-guarded upsert of one or more takers.
func UpsertTakersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []takerRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			http.Error(w, "expected JSON array", 400)
			return
		}
		if len(rows) == 0 {
			_ = json.NewEncoder(w).Encode(map[string]any{"inserted": 0, "updated": 0})
			return
		}
		ins, upd, err := upsertTakers(r.Context(), db, rows)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"inserted": ins, "updated": upd})
	}
}

// GET /takers
func ListTakersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		var rows *sql.Rows
		var err error
		if role == "" {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,name,email,role FROM takers ORDER BY username`)
		} else {
			rows, err = db.QueryContext(r.Context(), `SELECT id,username,name,email,role FROM takers WHERE role=$1 ORDER BY username`, role)
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		defer rows.Close()
		out := []takerRow{}
		for rows.Next() {
			var t takerRow
			if err := rows.Scan(&t.ID, &t.Username, &t.Name, &t.Email, &t.Role); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			out = append(out, t)
		}
		_ = json.NewEncoder(w).Encode(out)
	}
}

func upsertTakers(ctx context.Context, db *sql.DB, rows []takerRow) (inserted, updated int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	now := time.Now().Unix()
	for _, t := range rows {
		if t.Username == "" {
			return inserted, updated, errors.New("username required")
		}
		if t.Role == "" {
			t.Role = "student"
		}
		if t.Role != "student" && t.Role != "proctor" && t.Role != "admin" {
			return inserted, updated, errors.New("invalid role: " + t.Role)
		}
		var phash string
		if t.Password != "" {
			b, e := bcrypt.GenerateFromPassword([]byte(t.Password), 12)
			if e != nil {
				return inserted, updated, e
			}
			phash = string(b)
		}

		var existingID string
		err = tx.QueryRowContext(ctx, `SELECT id FROM takers WHERE username=$1`, t.Username).Scan(&existingID)
		switch {
		case err == nil:
			if phash != "" {
				_, err = tx.ExecContext(ctx, `UPDATE takers SET name=$1, email=$2, role=$3, password_hash=$4 WHERE id=$5`,
					t.Name, t.Email, t.Role, phash, existingID)
			} else {
				_, err = tx.ExecContext(ctx, `UPDATE takers SET name=$1, email=$2, role=$3 WHERE id=$4`,
					t.Name, t.Email, t.Role, existingID)
			}
			if err != nil {
				return inserted, updated, err
			}
			updated++
		case errors.Is(err, sql.ErrNoRows):
			if phash == "" {
				return inserted, updated, errors.New("password required for new taker: " + t.Username)
			}
			if t.ID == "" {
				t.ID = uuid.NewString()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO takers (id, username, name, email, password_hash, role, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				t.ID, t.Username, t.Name, t.Email, phash, t.Role, now)
			if err != nil {
				return inserted, updated, err
			}
			inserted++
		default:
			return inserted, updated, err
		}
	}
	return
}
