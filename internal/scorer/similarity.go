package scorer

import "github.com/bones-game/bones/internal/game"

// similarityThreshold is the minimum score FindBestDuplicateMatch accepts
// as a match.
const similarityThreshold = 0.5

const (
	lineOverlapWeight = 0.6
	descOverlapWeight = 0.4
)

// Similarity scores how likely a and b describe the same underlying issue,
// in [0, 1]. Zero whenever the files differ.
func Similarity(a, b *game.Finding) float64 {
	if a.FilePath != b.FilePath {
		return 0
	}
	return lineOverlapWeight*lineOverlap(a, b) + descOverlapWeight*descOverlap(a, b)
}

func lineOverlap(a, b *game.Finding) float64 {
	overlapStart := max(a.LineStart, b.LineStart)
	overlapEnd := min(a.LineEnd, b.LineEnd)
	overlapLen := overlapEnd - overlapStart + 1
	if overlapLen < 0 {
		overlapLen = 0
	}

	lenA := a.LineEnd - a.LineStart + 1
	lenB := b.LineEnd - b.LineStart + 1
	denom := max(lenA, lenB)
	if denom <= 0 {
		return 0
	}
	return float64(overlapLen) / float64(denom)
}

func descOverlap(a, b *game.Finding) float64 {
	tokensA := normalizeTokens(a.Description)
	tokensB := normalizeTokens(b.Description)

	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 1
	}
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}
	intersection := 0
	for _, t := range tokensA {
		if setB[t] {
			intersection++
		}
	}

	denom := max(len(tokensA), len(tokensB))
	return float64(intersection) / float64(denom)
}

// FindBestDuplicateMatch returns the candidate in others most similar to f,
// provided its score clears similarityThreshold. Used by callers that want
// to pre-detect duplicates before a human-visible VALID marking; the
// canonical, TOCTOU-safe check lives inside applyFindingValidation instead.
func FindBestDuplicateMatch(f *game.Finding, others []*game.Finding) (*game.Finding, float64) {
	var best *game.Finding
	bestScore := 0.0

	for _, other := range others {
		if other.ID == f.ID {
			continue
		}
		score := Similarity(f, other)
		if score > bestScore {
			bestScore = score
			best = other
		}
	}

	if best == nil || bestScore < similarityThreshold {
		return nil, bestScore
	}
	return best, bestScore
}
