package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/shared/pkg/metrics"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
)

type TwoFAAccounts interface {
	GetByID(ctx context.Context, id int64) (models.Account, error)
	ClaimTwoFASecret(ctx context.Context, id int64, candidate string) (string, error)
}

type OTPEngine interface {
	GenerateSecret(label string) (string, error)
	ProvisioningURI(secret, label string) (string, error)
	Verify(secret, code string, at time.Time) bool
}

type ProvisioningEncoder interface {
	Render(uri string) (string, error)
}

// CodeClaimer marks a code as spent. A false result means it was spent before.
type CodeClaimer interface {
	Claim(ctx context.Context, accountID int64, code string) (bool, error)
}

// TwoFactorService moves an account from no secret to enrolled. There is no
// way back: secrets are never rotated or cleared here.
type TwoFactorService struct {
	Accounts TwoFAAccounts
	Engine   OTPEngine
	Encoder  ProvisioningEncoder
	// Replay is optional; nil keeps codes reusable inside their window.
	Replay CodeClaimer
	Now    func() time.Time
	Log    zerolog.Logger
}

type Enrollment struct {
	Secret string
	QR     string
}

func (s *TwoFactorService) Status(ctx context.Context, accountID int64) (bool, error) {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return a.TwoFAEnabled(), nil
}

// BeginEnrollment is idempotent: once a secret exists it is re-rendered, never replaced.
func (s *TwoFactorService) BeginEnrollment(ctx context.Context, accountID int64) (Enrollment, error) {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return Enrollment{}, err
	}

	secret := ""
	if a.TwoFAEnabled() {
		secret = *a.TwoFASecret
	} else {
		candidate, err := s.Engine.GenerateSecret(a.Email)
		if err != nil {
			return Enrollment{}, err
		}
		secret, err = s.Accounts.ClaimTwoFASecret(ctx, accountID, candidate)
		if err != nil {
			return Enrollment{}, err
		}
		if secret == candidate {
			metrics.TwoFAEnrollmentsTotal.Inc()
			s.Log.Info().Int64("cliente_id", accountID).Msg("twofa secret issued")
		}
	}

	uri, err := s.Engine.ProvisioningURI(secret, a.Email)
	if err != nil {
		return Enrollment{}, err
	}
	qr, err := s.Encoder.Render(uri)
	if err != nil {
		return Enrollment{}, err
	}
	return Enrollment{Secret: secret, QR: qr}, nil
}

func (s *TwoFactorService) Verify(ctx context.Context, accountID int64, code string) error {
	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrNotEnrolled
		}
		return err
	}
	if !a.TwoFAEnabled() {
		return apperr.ErrNotEnrolled
	}

	if !s.Engine.Verify(*a.TwoFASecret, code, s.now()) {
		metrics.TwoFAVerificationsTotal.WithLabelValues("rejected").Inc()
		return apperr.ErrVerification
	}

	if s.Replay != nil {
		fresh, err := s.Replay.Claim(ctx, accountID, code)
		if err != nil {
			return fmt.Errorf("claim twofa code: %w", err)
		}
		if !fresh {
			metrics.TwoFAVerificationsTotal.WithLabelValues("replayed").Inc()
			return apperr.ErrVerification
		}
	}

	metrics.TwoFAVerificationsTotal.WithLabelValues("accepted").Inc()
	return nil
}

func (s *TwoFactorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
