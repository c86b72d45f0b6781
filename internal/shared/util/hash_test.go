package util

import (
	"strings"
	"testing"
)

func TestHashIdentity(t *testing.T) {
	hash := HashIdentity("citizen@test.com")

	if hash != HashIdentity("citizen@test.com") {
		t.Fatalf("expected deterministic hash")
	}
	if len(hash) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(hash))
	}
	if strings.ContainsAny(hash, "@. ") {
		t.Fatalf("expected hex output, got %q", hash)
	}
	if HashIdentity("staff@test.com") == hash {
		t.Fatalf("expected distinct inputs to hash differently")
	}
}
