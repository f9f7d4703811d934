// Package names draws unique agent short names from a fixed pool, shuffled
// once per game with a cryptographically random permutation, since the
// draw ends up embedded in an identity string.
package names

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Pool is the fixed set of short, distinct names agent ids are drawn from.
var Pool = []string{
	"Ada", "Babbage", "Curie", "Darwin", "Euler", "Fermat", "Galileo", "Hopper",
	"Ishango", "Jacquard", "Kepler", "Lovelace", "Mendel", "Newton", "Ostrowski",
	"Pascal", "Quine", "Ramanujan", "Shannon", "Turing", "Ulam", "Volta",
	"Wozniak", "Xenakis", "Yalow", "Zuse", "Archimedes", "Boole", "Cantor",
	"Dijkstra", "Erdos", "Feynman", "Godel", "Heisenberg", "Ibarra", "Jung",
	"Knuth", "Liskov", "Minsky", "Noether", "Ohm", "Planck", "Raman",
	"Schrodinger", "Tesla", "Uhlenbeck", "Vonneumann", "Wiener", "Xu",
	"Yoneda", "Zariski",
}

// Draw returns n unique names from Pool in a uniformly random order,
// erroring if more names are requested than the pool holds.
func Draw(n int) ([]string, error) {
	if n > len(Pool) {
		return nil, fmt.Errorf("requested %d agent names, pool only has %d", n, len(Pool))
	}
	if n < 0 {
		return nil, fmt.Errorf("requested negative agent count %d", n)
	}

	shuffled, err := shuffle(Pool)
	if err != nil {
		return nil, err
	}
	return shuffled[:n], nil
}

// shuffle returns a new slice containing pool's elements in a
// crypto/rand-driven Fisher-Yates permutation, leaving pool untouched.
func shuffle(pool []string) ([]string, error) {
	out := make([]string, len(pool))
	copy(out, pool)

	for i := len(out) - 1; i > 0; i-- {
		j, err := randIntn(i + 1)
		if err != nil {
			return nil, err
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func randIntn(n int) (int, error) {
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, fmt.Errorf("draw random index: %w", err)
	}
	return int(v.Int64()), nil
}
