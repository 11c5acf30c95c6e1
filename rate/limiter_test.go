package rate

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	burst := 1

	interval := 50 * time.Millisecond
	r := NewLimiter(burst, 100, Every(interval))
	defer r.Close()

	client := "203.0.113.7"
	if !r.Check(client) {
		t.Fatal("first request should be allowed")
	}
	if r.Check(client) {
		t.Fatal("second immediate request should be limited")
	}

	time.Sleep(interval + 10*time.Millisecond)
	if !r.Check(client) {
		t.Fatal("request after the interval should be allowed")
	}
}

func TestLimiterWithBurst(t *testing.T) {
	client := "203.0.113.8"
	burst := 5

	r := NewLimiter(burst, 100, Every(time.Hour))
	defer r.Close()

	for i := 0; i < burst; i++ {
		if !r.Check(client) {
			t.Fatalf("iteration %d: burst request should be allowed", i)
		}
	}
	if r.Check(client) {
		t.Fatal("request beyond the burst should be limited")
	}
}

func TestLimiterClientsAreIndependent(t *testing.T) {
	r := NewLimiter(1, 100, Every(time.Hour))
	defer r.Close()

	if !r.Check("a") || !r.Check("b") {
		t.Fatal("distinct clients must have distinct buckets")
	}
	if r.Check("a") {
		t.Fatal("client a should be limited")
	}
}

func TestLimiterPrune(t *testing.T) {
	r := NewLimiter(1, 1, Every(time.Hour))
	defer r.Close()

	r.Check("idle")
	r.prune(time.Now().Add(2 * time.Minute))

	r.mu.Lock()
	n := len(r.clients)
	r.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected idle client to be pruned, %d left", n)
	}

	if !r.Check("idle") {
		t.Fatal("pruned client should start with a fresh bucket")
	}
}
