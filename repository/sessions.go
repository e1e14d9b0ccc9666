// Package repository persists the profile tier of the session store: one
// durable record per browser context holding the serialized user profile
// and the last-activity timestamp.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	backauth "github.com/citymarkets/backoffice-auth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SessionRecord is one browser context's durable session state.
type SessionRecord struct {
	bun.BaseModel `bun:"table:auth_sessions,alias:ases"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ContextID     string     `bun:"context_id,notnull,unique" json:"context_id,omitempty"`
	Profile       []byte     `bun:"profile" json:"profile,omitempty"`
	LastActivity  int64      `bun:"last_activity" json:"last_activity,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Sessions is the storage surface for session records.
type Sessions interface {
	repository.Repository[*SessionRecord]

	GetByContext(ctx context.Context, contextID string) (*SessionRecord, error)
	DeleteByContext(ctx context.Context, contextID string) error
}

type sessions struct {
	repository.Repository[*SessionRecord]
	db *bun.DB
}

var _ Sessions = (*sessions)(nil)

// NewSessionsRepository wires the bun repository handlers for SessionRecord.
func NewSessionsRepository(db *bun.DB) Sessions {
	repo := repository.NewRepository[*SessionRecord](db, repository.ModelHandlers[*SessionRecord]{
		NewRecord: func() *SessionRecord { return &SessionRecord{} },
		GetID: func(r *SessionRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *SessionRecord, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &sessions{
		Repository: repo,
		db:         db,
	}
}

func (s *sessions) GetByContext(ctx context.Context, contextID string) (*SessionRecord, error) {
	record := &SessionRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("context_id = ?", contextID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *sessions) DeleteByContext(ctx context.Context, contextID string) error {
	_, err := s.db.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("context_id = ?", contextID).
		Exec(ctx)
	return err
}

// CreateSessionsTable creates the auth_sessions table when missing.
func CreateSessionsTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*SessionRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

var _ backauth.ProfileTier = (*BunProfileTier)(nil)

// BunProfileTier implements the session store's profile tier against a
// session record keyed by browser context. One instance is scoped to a
// single context identifier; the request context it was built with bounds
// its queries.
type BunProfileTier struct {
	ctx       context.Context
	db        *bun.DB
	contextID string
}

// NewBunProfileTier binds a profile tier to a browser context identifier.
func NewBunProfileTier(ctx context.Context, db *bun.DB, contextID string) *BunProfileTier {
	if ctx == nil {
		ctx = context.Background()
	}
	return &BunProfileTier{
		ctx:       ctx,
		db:        db,
		contextID: contextID,
	}
}

func (t *BunProfileTier) SetProfile(user *backauth.User) error {
	var data []byte
	if user != nil {
		var err error
		data, err = json.Marshal(user)
		if err != nil {
			return err
		}
	}

	now := time.Now()
	record := &SessionRecord{
		ID:        uuid.New(),
		ContextID: t.contextID,
		Profile:   data,
		UpdatedAt: &now,
	}

	_, err := t.db.NewInsert().
		Model(record).
		On("CONFLICT (context_id) DO UPDATE").
		Set("profile = EXCLUDED.profile").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(t.ctx)
	return err
}

func (t *BunProfileTier) Profile() (*backauth.User, error) {
	record, err := t.get()
	if err != nil {
		return nil, err
	}
	if record == nil || len(record.Profile) == 0 {
		return nil, nil
	}

	user := &backauth.User{}
	if err := json.Unmarshal(record.Profile, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (t *BunProfileTier) SetLastActivity(at time.Time) error {
	now := time.Now()
	record := &SessionRecord{
		ID:           uuid.New(),
		ContextID:    t.contextID,
		LastActivity: at.UnixMilli(),
		UpdatedAt:    &now,
	}

	_, err := t.db.NewInsert().
		Model(record).
		On("CONFLICT (context_id) DO UPDATE").
		Set("last_activity = EXCLUDED.last_activity").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(t.ctx)
	return err
}

func (t *BunProfileTier) LastActivity() (time.Time, error) {
	record, err := t.get()
	if err != nil {
		return time.Time{}, err
	}
	if record == nil || record.LastActivity == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(record.LastActivity), nil
}

func (t *BunProfileTier) ClearProfile() error {
	_, err := t.db.NewDelete().
		Model((*SessionRecord)(nil)).
		Where("context_id = ?", t.contextID).
		Exec(t.ctx)
	return err
}

func (t *BunProfileTier) get() (*SessionRecord, error) {
	record := &SessionRecord{}
	err := t.db.NewSelect().
		Model(record).
		Where("context_id = ?", t.contextID).
		Limit(1).
		Scan(t.ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}
