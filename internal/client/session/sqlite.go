package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

// SQLiteStore keeps the session in the client's metadata table under the
// auth_token and user_data keys.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// WithClock replaces the time source used for expiry checks.
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

func (s *SQLiteStore) repo(db dbx.DBTX) *metadata.SQLiteRepository {
	return metadata.NewSQLiteRepository(db).WithClock(s.now)
}

func (s *SQLiteStore) Save(ctx context.Context, sess Session) error {
	user, err := json.Marshal(sess.Identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, common.SessionTokenKey, []byte(sess.Token), sess.ExpiresAt); err != nil {
			return err
		}
		return repo.Set(ctx, common.SessionUserKey, user, sess.ExpiresAt)
	})
}

func (s *SQLiteStore) Load(ctx context.Context) (*Session, bool) {
	var (
		token, user []byte
		expiresAt   sql.NullInt64
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		var err error
		if token, err = repo.Get(ctx, common.SessionTokenKey); err != nil {
			return err
		}
		if user, err = repo.Get(ctx, common.SessionUserKey); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT expires_at FROM metadata WHERE key = ?`, common.SessionTokenKey).Scan(&expiresAt)
	})
	if err != nil || len(token) == 0 || len(user) == 0 {
		return nil, false
	}

	var id models.Identity
	if err := json.Unmarshal(user, &id); err != nil || id.ID == "" {
		return nil, false
	}

	sess := &Session{Token: string(token), Identity: id}
	if expiresAt.Valid {
		sess.ExpiresAt = time.Unix(expiresAt.Int64, 0)
	}
	return sess, true
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Delete(ctx, common.SessionTokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, common.SessionUserKey)
	})
}
