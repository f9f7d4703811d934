package scorer

import "testing"

func TestPatternHashIsDeterministic(t *testing.T) {
	a := PatternHash("main.go", 10, 12, "nil pointer dereference on missing config")
	b := PatternHash("main.go", 10, 12, "nil pointer dereference on missing config")
	if a != b {
		t.Fatalf("expected deterministic hash, got %q and %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected a 16-hex-char digest, got %d chars: %q", len(a), a)
	}
}

func TestPatternHashIgnoresTokenOrder(t *testing.T) {
	a := PatternHash("main.go", 10, 12, "missing nil check on config pointer")
	b := PatternHash("main.go", 10, 12, "config pointer missing nil check")
	if a != b {
		t.Fatalf("expected token-order-independent hash, got %q and %q", a, b)
	}
}

func TestPatternHashBucketsNearbyLines(t *testing.T) {
	a := PatternHash("main.go", 10, 12, "unchecked error return from write")
	b := PatternHash("main.go", 11, 13, "unchecked error return from write")
	if a != b {
		t.Fatalf("expected lines within the same 10-line bucket to collide, got %q and %q", a, b)
	}
}

func TestPatternHashDistinguishesDistantLines(t *testing.T) {
	a := PatternHash("main.go", 10, 12, "unchecked error return from write")
	b := PatternHash("main.go", 110, 112, "unchecked error return from write")
	if a == b {
		t.Fatal("expected distant line ranges to hash differently")
	}
}

func TestPatternHashDistinguishesFiles(t *testing.T) {
	a := PatternHash("main.go", 10, 12, "unchecked error return from write")
	b := PatternHash("other.go", 10, 12, "unchecked error return from write")
	if a == b {
		t.Fatal("expected different files to hash differently")
	}
}

func TestPatternHashDropsStopWordsAndShortTokens(t *testing.T) {
	a := PatternHash("main.go", 10, 12, "the bug is in the config")
	b := PatternHash("main.go", 10, 12, "bug config")
	if a != b {
		t.Fatalf("expected stop words and short tokens to be dropped, got %q and %q", a, b)
	}
}
