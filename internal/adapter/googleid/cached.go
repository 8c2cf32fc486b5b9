package googleid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/raghavbhatia332/licensedesk/internal/domain/admin"
	"github.com/raghavbhatia332/licensedesk/internal/port/cache"
	"github.com/raghavbhatia332/licensedesk/internal/port/identity"
)

// CachedVerifier wraps a Verifier with a short-TTL cache of successful
// verifications, keyed by token hash. Only identities are cached — the
// allowlist decision is made fresh on every request by the gate.
type CachedVerifier struct {
	inner identity.Verifier
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner with the given cache. ttl bounds how long a
// verified identity may be reused; it should stay well under the token's
// own lifetime.
func NewCached(inner identity.Verifier, c cache.Cache, ttl time.Duration) *CachedVerifier {
	return &CachedVerifier{inner: inner, cache: c, ttl: ttl}
}

func (v *CachedVerifier) Verify(ctx context.Context, rawToken string) (*admin.Identity, error) {
	key := tokenKey(rawToken)

	if data, ok, err := v.cache.Get(ctx, key); err == nil && ok {
		var ident admin.Identity
		if err := json.Unmarshal(data, &ident); err == nil {
			return &ident, nil
		}
	}

	ident, err := v.inner.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(ident); err == nil {
		_ = v.cache.Set(ctx, key, data, v.ttl)
	}
	return ident, nil
}

// tokenKey hashes the raw token so it is never stored as a cache key.
// Dot-separated prefix keeps the key valid for NATS KV buckets.
func tokenKey(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return "idtok." + hex.EncodeToString(sum[:])
}
