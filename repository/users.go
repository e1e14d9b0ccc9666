package repository

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"

	backauth "github.com/citymarkets/backoffice-auth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the storage surface for back-office user accounts.
type Users interface {
	repository.Repository[*backauth.User]

	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*backauth.User, error)
	Register(ctx context.Context, user *backauth.User) (*backauth.User, error)
}

type users struct {
	repository.Repository[*backauth.User]
	db *bun.DB
}

var _ Users = (*users)(nil)

// NewUsersRepository wires the bun repository handlers for User.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*backauth.User](db, repository.ModelHandlers[*backauth.User]{
		NewRecord: func() *backauth.User { return &backauth.User{} },
		GetID: func(u *backauth.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *backauth.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// GetByIdentifier resolves a user by email when the identifier parses as an
// address, otherwise by id.
func (u *users) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*backauth.User, error) {
	identifier = strings.TrimSpace(identifier)

	column := "id"
	if _, err := mail.ParseAddress(identifier); err == nil {
		column = "email"
	}

	user := &backauth.User{}
	q := u.db.NewSelect().
		Model(user).
		Where("? = ?", bun.Ident(column), identifier).
		Limit(1)
	for _, c := range criteria {
		q.Apply(c)
	}
	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, backauth.ErrIdentityNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *users) Register(ctx context.Context, user *backauth.User) (*backauth.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return u.Create(ctx, user)
}

// CreateUsersTable creates the users table when missing.
func CreateUsersTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*backauth.User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

var _ backauth.IdentityProvider = (*IdentityProvider)(nil)

// IdentityProvider adapts the users repository to the credential exchange:
// it resolves accounts by identifier and verifies passwords with bcrypt.
type IdentityProvider struct {
	users     Users
	passwords backauth.PasswordAuthenticator
}

// NewIdentityProvider returns a provider backed by the users repository.
func NewIdentityProvider(users Users) *IdentityProvider {
	return &IdentityProvider{
		users:     users,
		passwords: backauth.BcryptAuthenticator{},
	}
}

// WithPasswordAuthenticator overrides the password verifier.
func (p *IdentityProvider) WithPasswordAuthenticator(passwords backauth.PasswordAuthenticator) *IdentityProvider {
	if passwords != nil {
		p.passwords = passwords
	}
	return p
}

func (p *IdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (*backauth.User, error) {
	user, err := p.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := p.passwords.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, err
	}

	return user, nil
}

func (p *IdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (*backauth.User, error) {
	return p.users.GetByIdentifier(ctx, identifier)
}
