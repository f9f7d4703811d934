package scorer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// stopWords are dropped during description normalization — common English
// filler that would otherwise dominate the token set and cause unrelated
// findings to collide on pattern hash.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "can": true, "had": true, "her": true, "was": true,
	"one": true, "our": true, "out": true, "day": true, "get": true, "has": true,
	"him": true, "his": true, "how": true, "man": true, "new": true, "now": true,
	"old": true, "see": true, "two": true, "way": true, "who": true, "boy": true,
	"did": true, "its": true, "let": true, "put": true, "say": true, "she": true,
	"too": true, "use": true, "with": true, "this": true, "that": true, "from": true,
	"have": true, "will": true, "your": true, "when": true, "what": true, "which": true,
	"there": true, "their": true, "into": true, "than": true, "then": true, "them": true,
	"these": true, "some": true, "were": true, "been": true, "being": true,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeTokens lowercases description, strips non-alphanumerics to
// whitespace, drops stop words and words of length <= 2, and returns the
// sorted unique surviving tokens.
func normalizeTokens(description string) []string {
	lowered := strings.ToLower(description)
	cleaned := nonAlnum.ReplaceAllString(lowered, " ")

	seen := make(map[string]bool)
	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		if !seen[word] {
			seen[word] = true
			tokens = append(tokens, word)
		}
	}
	sort.Strings(tokens)
	return tokens
}

// bucketRange rounds a line range out to the enclosing multiple-of-10
// bucket, so findings whose line numbers drift slightly within the same
// neighborhood still collide on pattern hash.
func bucketRange(start, end int) (int, int) {
	bucketStart := (start / 10) * 10
	bucketEnd := ((end + 9) / 10) * 10
	return bucketStart, bucketEnd
}

// PatternHash computes the 16-hex-char duplicate-detection digest: normalize
// the description into sorted unique tokens, bucket the line range to the
// enclosing multiple of 10, and hash "path:bucketStart-bucketEnd:tokens"
// with SHA-256.
func PatternHash(filePath string, lineStart, lineEnd int, description string) string {
	bucketStart, bucketEnd := bucketRange(lineStart, lineEnd)
	tokens := normalizeTokens(description)

	input := fmt.Sprintf("%s:%d-%d:%s", filePath, bucketStart, bucketEnd, strings.Join(tokens, " "))
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:16]
}
