package scorer

import (
	"testing"

	"github.com/bones-game/bones/internal/game"
)

func finding(id int64, path string, start, end int, desc string) *game.Finding {
	return &game.Finding{ID: id, FilePath: path, LineStart: start, LineEnd: end, Description: desc}
}

func TestSimilarityZeroAcrossDifferentFiles(t *testing.T) {
	a := finding(1, "main.go", 10, 12, "nil pointer dereference")
	b := finding(2, "other.go", 10, 12, "nil pointer dereference")
	if got := Similarity(a, b); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestSimilarityHighForIdenticalFindings(t *testing.T) {
	a := finding(1, "main.go", 10, 12, "nil pointer dereference on config")
	b := finding(2, "main.go", 10, 12, "nil pointer dereference on config")
	got := Similarity(a, b)
	if got != 1 {
		t.Fatalf("expected 1 for identical findings, got %f", got)
	}
}

func TestSimilarityLowForUnrelatedFindings(t *testing.T) {
	a := finding(1, "main.go", 10, 12, "nil pointer dereference")
	b := finding(2, "main.go", 500, 510, "missing test coverage for edge case")
	got := Similarity(a, b)
	if got >= similarityThreshold {
		t.Fatalf("expected low similarity, got %f", got)
	}
}

func TestFindBestDuplicateMatch(t *testing.T) {
	target := finding(1, "main.go", 10, 12, "nil pointer dereference on config load")
	candidates := []*game.Finding{
		finding(2, "main.go", 500, 510, "unrelated issue entirely"),
		finding(3, "main.go", 11, 13, "nil pointer dereference on config load"),
	}

	best, score := FindBestDuplicateMatch(target, candidates)
	if best == nil || best.ID != 3 {
		t.Fatalf("expected candidate 3 as the best match, got %+v (score %f)", best, score)
	}
	if score < similarityThreshold {
		t.Fatalf("expected score >= threshold, got %f", score)
	}
}

func TestFindBestDuplicateMatchNoneAboveThreshold(t *testing.T) {
	target := finding(1, "main.go", 10, 12, "nil pointer dereference on config load")
	candidates := []*game.Finding{
		finding(2, "main.go", 500, 510, "unrelated issue entirely"),
	}

	best, _ := FindBestDuplicateMatch(target, candidates)
	if best != nil {
		t.Fatalf("expected no match above threshold, got %+v", best)
	}
}

func TestFindBestDuplicateMatchSkipsSelf(t *testing.T) {
	target := finding(1, "main.go", 10, 12, "nil pointer dereference on config load")
	candidates := []*game.Finding{target}

	best, _ := FindBestDuplicateMatch(target, candidates)
	if best != nil {
		t.Fatal("expected FindBestDuplicateMatch to skip comparing a finding against itself")
	}
}
