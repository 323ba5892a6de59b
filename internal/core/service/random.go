package service

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
)

const (
	alphanumeric      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	lowerAlphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Generator draws random strings from an injected byte source. Each service
// owns its own instance; tests pass a deterministic reader.
type Generator struct {
	src io.Reader
}

// NewGenerator returns a Generator reading from src, or crypto/rand when src is nil.
func NewGenerator(src io.Reader) *Generator {
	if src == nil {
		src = rand.Reader
	}
	return &Generator{src: src}
}

// String returns n characters drawn uniformly from alphabet using mask-based
// rejection sampling, so no character is favoured by modulo bias.
func (g *Generator) String(alphabet string, n int) (string, error) {
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", fmt.Errorf("random: alphabet size %d out of range", len(alphabet))
	}
	mask := byte(1<<bits.Len(uint(len(alphabet)-1)) - 1)

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/2+1)
	for len(out) < n {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", fmt.Errorf("random: read: %w", err)
		}
		for _, b := range buf {
			idx := int(b & mask)
			if idx >= len(alphabet) {
				continue
			}
			out = append(out, alphabet[idx])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// APIKey returns a fresh "sk-" key with a 32 character alphanumeric body.
func (g *Generator) APIKey() (string, error) {
	body, err := g.String(alphanumeric, 32)
	if err != nil {
		return "", err
	}
	return "sk-" + body, nil
}

// Suffix returns a short lowercase disambiguation suffix.
func (g *Generator) Suffix() (string, error) {
	return g.String(lowerAlphanumeric, 6)
}

// Intn returns a uniform integer in [0, n).
func (g *Generator) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("random: invalid bound %d", n)
	}
	bound := uint64(n)
	limit := ^uint64(0) - ^uint64(0)%bound
	var buf [8]byte
	for {
		if _, err := io.ReadFull(g.src, buf[:]); err != nil {
			return 0, fmt.Errorf("random: read: %w", err)
		}
		v := binary.BigEndian.Uint64(buf[:])
		if v < limit {
			return int(v % bound), nil
		}
	}
}
