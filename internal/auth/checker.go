package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/2beens/routinestats/internal/telemetry/tracing"
	"github.com/2beens/routinestats/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrUnauthorized = errors.New("unauthorized")

const (
	DefaultMemoTTL = 10 * time.Minute
	memoCacheSize  = 256 * 1024
)

// TokenChecker verifies API tokens against a single bcrypt hash. Verified tokens
// are remembered (by their sha256) for memoTTL so bcrypt does not run per request.
type TokenChecker struct {
	tokenHash string
	memo      *freecache.Cache
	memoTTL   time.Duration
	compare   func(token, hash string) bool
}

func NewTokenChecker(tokenHash string, memoTTL time.Duration) *TokenChecker {
	if tokenHash == "" {
		log.Warnln("api token hash not set, all requests will be rejected")
	}
	return &TokenChecker{
		tokenHash: tokenHash,
		memo:      freecache.NewCache(memoCacheSize),
		memoTTL:   memoTTL,
		compare:   pkg.CheckPasswordHash,
	}
}

func (c *TokenChecker) IsValid(ctx context.Context, token string) (_ bool, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "auth.token.check")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if token == "" || c.tokenHash == "" {
		return false, nil
	}

	key := memoKey(token)
	if _, err := c.memo.Get(key); err == nil {
		span.SetAttributes(attribute.Bool("memo-hit", true))
		return true, nil
	} else if !errors.Is(err, freecache.ErrNotFound) {
		return false, err
	}

	if !c.compare(token, c.tokenHash) {
		return false, nil
	}

	if err := c.memo.Set(key, []byte{1}, int(c.memoTTL.Seconds())); err != nil {
		log.Warnf("memoize verified token: %s", err)
	}
	return true, nil
}

// Authorize is IsValid turned into an error, ErrUnauthorized for bad tokens.
func (c *TokenChecker) Authorize(ctx context.Context, token string) error {
	valid, err := c.IsValid(ctx, token)
	if err != nil {
		return err
	}
	if !valid {
		return ErrUnauthorized
	}
	return nil
}

func memoKey(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
