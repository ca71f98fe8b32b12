package service

import (
	"context"
	"errors"
	"testing"
	"time"

	appErrors "go-musician-booking/core/errors"
)

type counterCache struct {
	counts map[string]int64
	fail   bool
}

func (c *counterCache) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (c *counterCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}
func (c *counterCache) Del(ctx context.Context, key string) error { return nil }
func (c *counterCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (c *counterCache) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	if c.fail {
		return 0, errors.New("connection refused")
	}
	c.counts[key]++
	return c.counts[key], nil
}

func TestResponseGuard(t *testing.T) {
	ctx := context.Background()
	c := &counterCache{counts: map[string]int64{}}
	g := NewResponseGuard(c, 2, time.Minute)

	for i := 0; i < 2; i++ {
		if err := g.Allow(ctx, "tok", "203.0.113.9"); err != nil {
			t.Fatalf("attempt %d error = %v", i+1, err)
		}
	}
	if err := g.Allow(ctx, "other", "203.0.113.9"); appErrors.CodeOf(err) != appErrors.ErrTooManyRequests {
		t.Errorf("third attempt error = %v, want too many requests", err)
	}
	if err := g.Allow(ctx, "tok", ""); err != nil {
		t.Errorf("token-keyed attempt error = %v", err)
	}

	c.fail = true
	if err := g.Allow(ctx, "tok", "203.0.113.9"); err != nil {
		t.Errorf("cache failure blocked the response: %v", err)
	}

	var disabled *ResponseGuard
	if err := disabled.Allow(ctx, "tok", "ip"); err != nil {
		t.Errorf("nil guard error = %v", err)
	}
}

func TestRespondThrottled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.monthly(t, h.musician(t, "quin"), 1000, day(11))
	h.contracts.deps.Guard = NewResponseGuard(&counterCache{counts: map[string]int64{}}, 1, time.Minute)

	if _, err := h.contracts.Respond(ctx, RespondInput{Token: "wrong", Action: ActionSign, IPAddress: "198.51.100.2"}); !appErrors.Is(err, appErrors.NotFound) {
		t.Fatalf("first attempt error = %v", err)
	}
	_, err := h.contracts.Respond(ctx, RespondInput{Token: m.Token, Action: ActionSign, IPAddress: "198.51.100.2"})
	if appErrors.CodeOf(err) != appErrors.ErrTooManyRequests {
		t.Errorf("second attempt error = %v, want too many requests", err)
	}
}
