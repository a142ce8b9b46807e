package chainrpc

import (
	"testing"
	"time"
)

func sampleNullifier(b byte) [32]byte {
	var n [32]byte
	for i := range n {
		n[i] = b
	}
	return n
}

func TestNullifierCacheGetSetMiss(t *testing.T) {
	c, err := NewNullifierCache(time.Minute)
	if err != nil {
		t.Fatalf("NewNullifierCache: %v", err)
	}
	n := sampleNullifier(1)
	if _, ok := c.Get(n); ok {
		t.Fatal("expected miss before Set")
	}
	c.Set(n, StatusClaimed)
	status, ok := c.Get(n)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if status != StatusClaimed {
		t.Fatalf("got %v want StatusClaimed", status)
	}
}

func TestNullifierCacheDistinguishesKeys(t *testing.T) {
	c, err := NewNullifierCache(time.Minute)
	if err != nil {
		t.Fatalf("NewNullifierCache: %v", err)
	}
	a, b := sampleNullifier(1), sampleNullifier(2)
	c.Set(a, StatusClaimed)
	c.Set(b, StatusUnclaimed)

	statusA, _ := c.Get(a)
	statusB, _ := c.Get(b)
	if statusA != StatusClaimed || statusB != StatusUnclaimed {
		t.Fatalf("cache entries collided: a=%v b=%v", statusA, statusB)
	}
}

func TestNullifierCacheClear(t *testing.T) {
	c, err := NewNullifierCache(time.Minute)
	if err != nil {
		t.Fatalf("NewNullifierCache: %v", err)
	}
	n := sampleNullifier(3)
	c.Set(n, StatusClaimed)
	c.Clear(n)
	if _, ok := c.Get(n); ok {
		t.Fatal("expected miss after Clear")
	}
}

func TestNullifierCacheClearAll(t *testing.T) {
	c, err := NewNullifierCache(time.Minute)
	if err != nil {
		t.Fatalf("NewNullifierCache: %v", err)
	}
	a, b := sampleNullifier(4), sampleNullifier(5)
	c.Set(a, StatusClaimed)
	c.Set(b, StatusClaimed)
	c.ClearAll()
	if _, ok := c.Get(a); ok {
		t.Fatal("expected a to be gone after ClearAll")
	}
	if _, ok := c.Get(b); ok {
		t.Fatal("expected b to be gone after ClearAll")
	}
}

func TestNullifierStatusString(t *testing.T) {
	cases := map[NullifierStatus]string{
		StatusUnknown:   "unknown",
		StatusUnclaimed: "unclaimed",
		StatusClaimed:   "claimed",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Fatalf("status %d: got %q want %q", status, got, want)
		}
	}
}

func TestNewNullifierCacheDefaultsTTL(t *testing.T) {
	c, err := NewNullifierCache(0)
	if err != nil {
		t.Fatalf("NewNullifierCache: %v", err)
	}
	if c.ttl != DefaultNullifierCacheTTL {
		t.Fatalf("got ttl %v want %v", c.ttl, DefaultNullifierCacheTTL)
	}
}
