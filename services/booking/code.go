package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"maisonette/utils"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// CodeGenerator issues human-readable booking codes such as MDP-7K2Q9A.
type CodeGenerator struct {
	Prefix   string
	Attempts int
	// Exists reports whether a code is already taken.
	Exists func(ctx context.Context, code string) (bool, error)
}

func NewCodeGenerator(prefix string, attempts int, exists func(ctx context.Context, code string) (bool, error)) *CodeGenerator {
	if prefix == "" {
		prefix = "MDP"
	}
	if attempts <= 0 {
		attempts = 20
	}
	return &CodeGenerator{Prefix: prefix, Attempts: attempts, Exists: exists}
}

// Generate returns an unused code, giving up after Attempts collisions.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for i := 0; i < g.Attempts; i++ {
		suffix, err := randomString(codeLength)
		if err != nil {
			return "", fmt.Errorf("booking: generate code: %w", err)
		}
		code := g.Prefix + "-" + suffix

		taken, err := g.Exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("booking: check code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", utils.NewConflictError(fmt.Sprintf("could not generate a unique booking code after %d attempts", g.Attempts))
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b), nil
}
