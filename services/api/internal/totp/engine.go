// Package totp wraps RFC 6238 codes, provisioning URIs and QR rendering
// for second-factor enrollment.
package totp

import (
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// SecretSize is the raw secret length: 160 bits, 32 base32 characters.
const SecretSize = 20

type Engine struct {
	Issuer string
	Period uint
	Skew   uint
}

func NewEngine(issuer string, period, skew uint) *Engine {
	return &Engine{Issuer: issuer, Period: period, Skew: skew}
}

// GenerateSecret returns a fresh base32 secret drawn from crypto/rand.
func (e *Engine) GenerateSecret(label string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.Issuer,
		AccountName: label,
		Period:      e.Period,
		SecretSize:  SecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	return key.Secret(), nil
}

// ProvisioningURI renders the otpauth:// URI for an existing secret.
func (e *Engine) ProvisioningURI(secret, label string) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.Issuer,
		AccountName: label,
		Period:      e.Period,
		Secret:      raw,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("build provisioning uri: %w", err)
	}
	return key.URL(), nil
}

// Verify accepts code if it matches the step at `at` or any step within Skew
// steps either side. Malformed codes are a plain mismatch.
func (e *Engine) Verify(secret, code string, at time.Time) bool {
	ok, err := totp.ValidateCustom(strings.TrimSpace(code), secret, at.UTC(), e.opts())
	return err == nil && ok
}

// Code returns the code for the step containing at.
func (e *Engine) Code(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at.UTC(), e.opts())
}

// Window is how long an accepted code can stay acceptable.
func (e *Engine) Window() time.Duration {
	return time.Duration(2*e.Skew+1) * time.Duration(e.Period) * time.Second
}

func (e *Engine) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    e.Period,
		Skew:      e.Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimRight(strings.TrimSpace(secret), "="))
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode totp secret: %w", err)
	}
	return raw, nil
}
