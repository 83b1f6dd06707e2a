package roomcode

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Alphabet excludes I, O, 0 and 1, which are easy to misread when a code
// is shared over voice or a screenshot.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length of a room code.
const Length = 6

// Generator produces random room codes. Uniqueness against live rooms is
// the caller's responsibility; codes may be reused once a room is gone.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Generate returns a fresh Length-character code.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(Alphabet[g.rng.Intn(len(Alphabet))])
	}
	return b.String()
}

// Normalize maps user input onto the canonical code form. Codes are
// case-insensitive on input and always rendered upper-case.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
