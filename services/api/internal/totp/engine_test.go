package totp

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 15, 0, time.UTC)

func TestGenerateSecret_LengthAndAlphabet(t *testing.T) {
	e := NewEngine("RunX", 30, 1)
	s1, err := e.GenerateSecret("ana@runx.mx")
	require.NoError(t, err)
	s2, err := e.GenerateSecret("ana@runx.mx")
	require.NoError(t, err)

	assert.Len(t, s1, 32)
	assert.NotEqual(t, s1, s2)
	assert.Equal(t, strings.ToUpper(s1), s1)

	raw, err := decodeSecret(s1)
	require.NoError(t, err)
	assert.Len(t, raw, SecretSize)
}

func TestProvisioningURI_BindsSecretLabelIssuer(t *testing.T) {
	e := NewEngine("RunX", 30, 1)
	secret, err := e.GenerateSecret("ana@runx.mx")
	require.NoError(t, err)

	uri, err := e.ProvisioningURI(secret, "ana@runx.mx")
	require.NoError(t, err)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", u.Scheme)
	assert.Equal(t, "totp", u.Host)
	assert.Contains(t, u.Path, "ana@runx.mx")
	assert.Equal(t, secret, u.Query().Get("secret"))
	assert.Equal(t, "RunX", u.Query().Get("issuer"))

	again, err := e.ProvisioningURI(secret, "ana@runx.mx")
	require.NoError(t, err)
	assert.Equal(t, uri, again, "same secret must render the same uri")
}

func TestProvisioningURI_BadSecret(t *testing.T) {
	e := NewEngine("RunX", 30, 1)
	_, err := e.ProvisioningURI("not base32 !!", "ana@runx.mx")
	require.Error(t, err)
}

func TestVerify_WindowIsOneStepEachSide(t *testing.T) {
	e := NewEngine("RunX", 30, 1)
	secret, err := e.GenerateSecret("ana@runx.mx")
	require.NoError(t, err)

	cases := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"current step", 0, true},
		{"previous step", -30 * time.Second, true},
		{"next step", 30 * time.Second, true},
		{"two steps back", -60 * time.Second, false},
		{"two steps ahead", 60 * time.Second, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, err := e.Code(secret, fixedNow.Add(tc.offset))
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.Verify(secret, code, fixedNow))
		})
	}
}

func TestVerify_Malformed(t *testing.T) {
	e := NewEngine("RunX", 30, 1)
	secret, err := e.GenerateSecret("ana@runx.mx")
	require.NoError(t, err)

	assert.False(t, e.Verify(secret, "", fixedNow))
	assert.False(t, e.Verify(secret, "12345", fixedNow))
	assert.False(t, e.Verify(secret, "abcdef", fixedNow))
}

func TestWindow(t *testing.T) {
	assert.Equal(t, 90*time.Second, NewEngine("RunX", 30, 1).Window())
}
