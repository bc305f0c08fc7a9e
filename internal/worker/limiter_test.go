package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "http://inference.local:8080/predict"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	if err := limiter.Wait(ctx, "https://api.openai.com/v1"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	url := "http://inference.local:8080/predict"

	if err := limiter.Wait(ctx, url); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst of 1 is consumed
	if limiter.Allow(url) {
		t.Error("expected allow to fail (exhausted tokens)")
	}

	// Same host, different path shares the bucket
	if limiter.Allow("http://inference.local:8080/tokenize") {
		t.Error("expected same host to share the bucket")
	}

	if !limiter.Allow("http://other.local:8080/predict") {
		t.Error("expected allow for other host")
	}
}

func TestLimiter_ZeroRateIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("http://inference.local") {
			t.Fatalf("call %d throttled with rate 0", i)
		}
	}
}

func TestLimiter_NilNeverBlocks(t *testing.T) {
	var limiter *Limiter
	if err := limiter.Wait(context.Background(), "http://x"); err != nil {
		t.Errorf("nil limiter returned %v", err)
	}
	if !limiter.Allow("http://x") {
		t.Error("nil limiter should allow")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	url := "http://slow.local"
	_ = limiter.Wait(context.Background(), url)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, url); err == nil {
		t.Error("expected wait to fail once the context expires")
	}
}

func TestLimiter_SetHostRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	host := "slow.local"

	limiter.SetHostRate(host, 0.1, 1)

	if !limiter.Allow("http://" + host) {
		t.Error("first request should pass")
	}
	if limiter.Allow("http://" + host) {
		t.Error("second request should fail")
	}
	if !limiter.Allow("http://fast.local") {
		t.Error("other host should pass")
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("http://inference.local:8080/predict")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "inference.local:8080" {
		t.Errorf("expected inference.local:8080, got %s", host)
	}

	if _, err := extractHost("::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
}
