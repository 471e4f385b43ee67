package shortcode

import (
	"crypto/rand"
	"math/big"

	"github.com/wadjakorntonsri/go-dynamic-link/pkg/ports"
)

// Alphabet leaves out characters that are easy to misread (0/O, 1/l/I).
const Alphabet = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

const DefaultLength = 6

// Generator produces random codes from an alphabet using crypto/rand.
type Generator struct {
	alphabet string
	length   int
}

func NewGenerator(length int) *Generator {
	if length < 1 {
		length = DefaultLength
	}
	return &Generator{alphabet: Alphabet, length: length}
}

func (g *Generator) Next() (string, error) {
	b := make([]byte, g.length)
	max := big.NewInt(int64(len(g.alphabet)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = g.alphabet[num.Int64()]
	}
	return string(b), nil
}

var _ ports.CodeProvider = (*Generator)(nil)
