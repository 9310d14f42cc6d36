package repos

import (
	"database/sql"
	"errors"

	"sparesledger/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Bind remembers the role and display name picked for sid, replacing any
// earlier choice.
func (r *SessionRepo) Bind(sid string, role domain.Role, name string) error {
	_, err := r.DB.Exec(`INSERT INTO sessions(id,role,name,last_seen)
                          VALUES(?,?,?,CURRENT_TIMESTAMP)
                          ON CONFLICT(id) DO UPDATE SET role=excluded.role,name=excluded.name,last_seen=CURRENT_TIMESTAMP`,
		sid, string(role), name)
	return err
}

func (r *SessionRepo) Get(sid string) (*domain.Session, error) {
	var s domain.Session
	err := r.DB.Get(&s, `SELECT id,role,name FROM sessions WHERE id=?`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id=?`, sid)
	return err
}
