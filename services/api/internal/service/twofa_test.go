package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoseGlez23/runX-API3/services/api/internal/apperr"
	"github.com/JoseGlez23/runX-API3/services/api/internal/totp"
	"github.com/JoseGlez23/runX-API3/shared/pkg/cache"
	"github.com/JoseGlez23/runX-API3/shared/pkg/models"
)

// memAccounts mirrors the conditional write of AccountsPG.ClaimTwoFASecret.
type memAccounts struct {
	mu       sync.Mutex
	accounts map[int64]models.Account
	claims   int
}

func newMemAccounts(accounts ...models.Account) *memAccounts {
	m := &memAccounts{accounts: map[int64]models.Account{}}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, apperr.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) ClaimTwoFASecret(_ context.Context, id int64, candidate string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return "", apperr.ErrNotFound
	}
	if a.TwoFASecret == nil {
		m.claims++
		s := candidate
		a.TwoFASecret = &s
		m.accounts[id] = a
	}
	return *a.TwoFASecret, nil
}

var twofaNow = time.Date(2026, 10, 18, 9, 30, 10, 0, time.UTC)

func newTwoFactor(store *memAccounts) (*TwoFactorService, *totp.Engine) {
	engine := totp.NewEngine("RunX", 30, 1)
	return &TwoFactorService{
		Accounts: store,
		Engine:   engine,
		Encoder:  totp.NewQREncoder(),
		Now:      func() time.Time { return twofaNow },
		Log:      zerolog.Nop(),
	}, engine
}

func TestTwoFactor_StatusFlipsAfterEnrollment(t *testing.T) {
	store := newMemAccounts(models.Account{ID: 42, Email: "ana@runx.mx"})
	s, _ := newTwoFactor(store)
	ctx := context.Background()

	enabled, err := s.Status(ctx, 42)
	require.NoError(t, err)
	require.False(t, enabled)

	_, err = s.BeginEnrollment(ctx, 42)
	require.NoError(t, err)

	enabled, err = s.Status(ctx, 42)
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestTwoFactor_StatusUnknownAccount(t *testing.T) {
	s, _ := newTwoFactor(newMemAccounts())
	_, err := s.Status(context.Background(), 404)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTwoFactor_EnrollmentIsIdempotent(t *testing.T) {
	store := newMemAccounts(models.Account{ID: 42, Email: "ana@runx.mx"})
	s, _ := newTwoFactor(store)
	ctx := context.Background()

	first, err := s.BeginEnrollment(ctx, 42)
	require.NoError(t, err)
	second, err := s.BeginEnrollment(ctx, 42)
	require.NoError(t, err)

	require.Equal(t, first.Secret, second.Secret)
	require.Equal(t, first.QR, second.QR)
	require.Len(t, first.Secret, 32)
	require.Contains(t, first.QR, "data:image/png;base64,")
	require.Equal(t, 1, store.claims)
}

func TestTwoFactor_EnrollmentKeepsExistingSecret(t *testing.T) {
	existing := "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"
	store := newMemAccounts(models.Account{ID: 42, Email: "ana@runx.mx", TwoFASecret: &existing})
	s, _ := newTwoFactor(store)

	got, err := s.BeginEnrollment(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, existing, got.Secret)
	require.Zero(t, store.claims)
}

func TestTwoFactor_ConcurrentEnrollmentAgrees(t *testing.T) {
	store := newMemAccounts(models.Account{ID: 42, Email: "ana@runx.mx"})
	s, _ := newTwoFactor(store)

	const n = 8
	secrets := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := s.BeginEnrollment(context.Background(), 42)
			assert.NoError(t, err)
			secrets[i] = e.Secret
		}(i)
	}
	wg.Wait()

	for _, sec := range secrets {
		require.Equal(t, secrets[0], sec)
	}
	require.Equal(t, 1, store.claims)
}

func TestTwoFactor_EnrollmentUnknownAccount(t *testing.T) {
	s, _ := newTwoFactor(newMemAccounts())
	_, err := s.BeginEnrollment(context.Background(), 404)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTwoFactor_VerifyWindow(t *testing.T) {
	store := newMemAccounts(models.Account{ID: 42, Email: "ana@runx.mx"})
	s, engine := newTwoFactor(store)
	ctx := context.Background()

	e, err := s.BeginEnrollment(ctx, 42)
	require.NoError(t, err)

	for _, tc := range []struct {
		offset time.Duration
		want   error
	}{
		{0, nil},
		{-30 * time.Second, nil},
		{30 * time.Second, nil},
		{-60 * time.Second, apperr.ErrVerification},
		{60 * time.Second, apperr.ErrVerification},
	} {
		code, err := engine.Code(e.Secret, twofaNow.Add(tc.offset))
		require.NoError(t, err)
		err = s.Verify(ctx, 42, code)
		if tc.want == nil {
			require.NoError(t, err, "offset %s", tc.offset)
		} else {
			require.ErrorIs(t, err, tc.want, "offset %s", tc.offset)
		}
	}
}

func TestTwoFactor_VerifyAllowsReuseWithoutGuard(t *testing.T) {
	store := newMemAccounts(models.Account{ID: 42, Email: "ana@runx.mx"})
	s, engine := newTwoFactor(store)
	ctx := context.Background()

	e, err := s.BeginEnrollment(ctx, 42)
	require.NoError(t, err)
	code, err := engine.Code(e.Secret, twofaNow)
	require.NoError(t, err)

	require.NoError(t, s.Verify(ctx, 42, code))
	require.NoError(t, s.Verify(ctx, 42, code))
}

func TestTwoFactor_VerifyReplayGuard(t *testing.T) {
	store := newMemAccounts(models.Account{ID: 42, Email: "ana@runx.mx"})
	s, engine := newTwoFactor(store)
	mr := miniredis.RunT(t)
	rc := cache.New(mr.Addr())
	t.Cleanup(func() { _ = rc.Close() })
	s.Replay = &totp.ReplayGuard{Redis: rc, TTL: engine.Window()}
	ctx := context.Background()

	e, err := s.BeginEnrollment(ctx, 42)
	require.NoError(t, err)
	code, err := engine.Code(e.Secret, twofaNow)
	require.NoError(t, err)

	require.NoError(t, s.Verify(ctx, 42, code))
	require.ErrorIs(t, s.Verify(ctx, 42, code), apperr.ErrVerification)
}

func TestTwoFactor_VerifyNotEnrolled(t *testing.T) {
	store := newMemAccounts(models.Account{ID: 42, Email: "ana@runx.mx"})
	s, _ := newTwoFactor(store)

	require.ErrorIs(t, s.Verify(context.Background(), 42, "123456"), apperr.ErrNotEnrolled)
	require.ErrorIs(t, s.Verify(context.Background(), 404, "123456"), apperr.ErrNotEnrolled)
}
