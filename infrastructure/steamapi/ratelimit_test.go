package steamapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

// jsonOK is a handler that answers instantly with an empty JSON object.
func jsonOK(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{}`))
}

func TestRateLimit_BurstProceedsThenThrottles(t *testing.T) {
	srv := newTestServer(t, jsonOK)
	client := newTestClient(t, srv, func(cfg *Config) {
		cfg.RequestsPerSecond = 2
		cfg.Burst = 3
	})
	ctx := context.Background()
	req := Request{Interface: "ISteamApps", Method: "GetAppList", Version: 2}

	// The first burst-many calls ride on banked tokens.
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.Do(ctx, req); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("burst of 3 took %v, expected near-zero waits", elapsed)
	}

	// The bucket is now empty; the next call waits for a refill
	// (one token per 500ms at 2/s).
	fourthStart := time.Now()
	if _, err := client.Do(ctx, req); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if elapsed := time.Since(fourthStart); elapsed < 250*time.Millisecond {
		t.Errorf("call beyond capacity completed in %v, expected a refill wait", elapsed)
	}
}

func TestRateLimit_SequentialCallsAreSpaced(t *testing.T) {
	srv := newTestServer(t, jsonOK)
	client := newTestClient(t, srv, func(cfg *Config) {
		cfg.RequestsPerSecond = 10
		cfg.Burst = 1
	})
	ctx := context.Background()
	req := Request{Interface: "ISteamApps", Method: "GetAppList", Version: 2}

	// 20 calls against a 10/s bucket of capacity 1: the first is free,
	// the remaining 19 each wait ~100ms.
	start := time.Now()
	for i := 0; i < 20; i++ {
		if _, err := client.Do(ctx, req); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}
	elapsed := time.Since(start)
	if elapsed < 1850*time.Millisecond {
		t.Errorf("20 calls took %v, want >= ~1.9s", elapsed)
	}

	if tokens := client.Tokens(); tokens < 0 || tokens > 1 {
		t.Errorf("tokens = %v, want within [0, capacity]", tokens)
	}
}

func TestRateLimit_ConcurrentCallsShareTheBucket(t *testing.T) {
	srv := newTestServer(t, jsonOK)
	client := newTestClient(t, srv, func(cfg *Config) {
		cfg.RequestsPerSecond = 10
		cfg.Burst = 1
	})
	req := Request{Interface: "ISteamApps", Method: "GetAppList", Version: 2}

	// 20 goroutines race for one bucket refilling at 10/s. However the
	// tokens interleave, the batch cannot finish before ~19 refill
	// intervals have passed, and the bucket never goes negative.
	start := time.Now()
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Do(context.Background(), req); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Do() error = %v", err)
	}

	if elapsed := time.Since(start); elapsed < 1850*time.Millisecond {
		t.Errorf("20 concurrent calls took %v, want >= ~1.9s", elapsed)
	}
	if tokens := client.Tokens(); tokens < -0.01 || tokens > 1 {
		t.Errorf("tokens = %v, want within [0, capacity]", tokens)
	}
}

func TestRateLimit_RetriesPayTheBucket(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newTestClient(t, srv, func(cfg *Config) {
		cfg.RequestsPerSecond = 10
		cfg.Burst = 1
		cfg.MaxAttempts = 3
		cfg.InitialBackoff = time.Millisecond
	})

	// With a near-zero backoff schedule, the attempt spacing comes from
	// the bucket: attempts two and three each wait ~100ms for a token.
	start := time.Now()
	_, err := client.Do(context.Background(), Request{Interface: "ISteamApps", Method: "GetAppList", Version: 2})
	if !errors.Is(err, ErrServer) {
		t.Fatalf("Do() error = %v, want ErrServer", err)
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("3 attempts took %v, retries did not pay the bucket", elapsed)
	}
}

func TestRateLimit_CancelledWaiterReturnsToken(t *testing.T) {
	srv := newTestServer(t, jsonOK)
	client := newTestClient(t, srv, func(cfg *Config) {
		cfg.RequestsPerSecond = 10
		cfg.Burst = 1
	})
	req := Request{Interface: "ISteamApps", Method: "GetAppList", Version: 2}

	// Drain the bucket.
	if _, err := client.Do(context.Background(), req); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	// A waiter that gives up mid-wait must not hold its reservation.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	_, err := client.Do(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}

	// The abandoned token goes to the next caller at the normal refill
	// time, not one interval later.
	start := time.Now()
	if _, err := client.Do(context.Background(), req); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("call after a cancelled wait took %v, the reservation was not returned", elapsed)
	}
}

func TestTokens_StaysWithinCapacity(t *testing.T) {
	srv := newTestServer(t, jsonOK)
	client := newTestClient(t, srv, func(cfg *Config) {
		cfg.RequestsPerSecond = 100
		cfg.Burst = 5
	})
	ctx := context.Background()
	req := Request{Interface: "ISteamApps", Method: "GetAppList", Version: 2}

	if tokens := client.Tokens(); tokens > 5 {
		t.Errorf("idle tokens = %v, want <= capacity", tokens)
	}

	for i := 0; i < 5; i++ {
		if _, err := client.Do(ctx, req); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
	}

	if tokens := client.Tokens(); tokens < -0.01 || tokens > 5 {
		t.Errorf("tokens = %v, want within [0, capacity]", tokens)
	}

	// Idle refill never overshoots the capacity.
	time.Sleep(100 * time.Millisecond)
	if tokens := client.Tokens(); tokens > 5 {
		t.Errorf("tokens after refill = %v, want <= capacity", tokens)
	}
}
