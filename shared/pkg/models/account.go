package models

import "time"

type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	// TwoFASecret is nil until enrollment; once set it is never cleared.
	TwoFASecret *string
	CreatedAt   time.Time
}

func (a Account) TwoFAEnabled() bool {
	return a.TwoFASecret != nil && *a.TwoFASecret != ""
}
