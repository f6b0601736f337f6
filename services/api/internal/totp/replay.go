package totp

import (
	"context"
	"strconv"
	"time"

	"github.com/JoseGlez23/runX-API3/shared/pkg/cache"
)

// ReplayGuard remembers accepted codes in Redis so each one works once.
type ReplayGuard struct {
	Redis *cache.Redis
	TTL   time.Duration
}

func usedKey(accountID int64, code string) string {
	return "2fa:used:" + strconv.FormatInt(accountID, 10) + ":" + code
}

// Claim reports whether code had not been used yet for the account.
func (g *ReplayGuard) Claim(ctx context.Context, accountID int64, code string) (bool, error) {
	return g.Redis.SetNX(ctx, usedKey(accountID, code), "1", g.TTL)
}
