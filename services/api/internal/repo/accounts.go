package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
	"github.com/JoseGlez23/runX-API3/shared/pkg/pg"
)

type AccountsPG struct{ DB pg.DB }

// Create fails with apperr.ErrConflict when the email is taken.
func (r *AccountsPG) Create(ctx context.Context, name, email, passwordHash string) (int64, error) {
	var id int64
	err := r.DB.QueryRow(ctx, `
		insert into accounts(name, email, password)
		values ($1, $2, $3)
		returning id
	`, name, email, passwordHash).Scan(&id)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return 0, fmt.Errorf("create account: %w", apperr.ErrConflict)
		}
		return 0, fmt.Errorf("create account: %w", err)
	}
	return id, nil
}

func (r *AccountsPG) GetByEmail(ctx context.Context, email string) (models.Account, error) {
	return r.getOne(ctx, `
		select id, name, email, password, twofa_secret
		from accounts where email = $1
	`, email)
}

func (r *AccountsPG) GetByID(ctx context.Context, id int64) (models.Account, error) {
	return r.getOne(ctx, `
		select id, name, email, password, twofa_secret
		from accounts where id = $1
	`, id)
}

func (r *AccountsPG) getOne(ctx context.Context, query string, arg any) (models.Account, error) {
	var (
		a      models.Account
		secret pgtype.Text
	)
	err := r.DB.QueryRow(ctx, query, arg).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &secret)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, apperr.ErrNotFound
		}
		return models.Account{}, fmt.Errorf("get account: %w", err)
	}
	if secret.Valid {
		a.TwoFASecret = &secret.String
	}
	return a, nil
}

// ClaimTwoFASecret stores candidate only if the account has no secret yet and
// returns whichever secret is stored afterwards. Two racing enrollments both
// get the winner's secret.
func (r *AccountsPG) ClaimTwoFASecret(ctx context.Context, id int64, candidate string) (string, error) {
	var stored string
	err := r.DB.QueryRow(ctx, `
		update accounts
		set twofa_secret = $2
		where id = $1 and twofa_secret is null
		returning twofa_secret
	`, id, candidate).Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("claim twofa secret: %w", err)
	}

	a, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if a.TwoFASecret == nil {
		return "", fmt.Errorf("claim twofa secret: secret vanished for account %d", id)
	}
	return *a.TwoFASecret, nil
}
