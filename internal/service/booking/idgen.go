package booking

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Domenick1991/skybooker/internal/apperror"
)

const (
	base36Alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	bookingRandLen   = 4
	confirmationLen  = 6
	timestampDigits  = 100_000_000 // last 8 digits of the unix millisecond clock
	maxSuffixAttempt = 64
)

// IDGenerator issues booking ids and confirmation codes. Within one millisecond it
// never repeats a booking id; across processes the store's unique index decides.
type IDGenerator struct {
	prefix string
	now    func() time.Time
	random io.Reader

	mu        sync.Mutex
	lastMilli int64
	issued    map[string]struct{}
}

type IDGeneratorOption func(*IDGenerator)

func WithIDClock(now func() time.Time) IDGeneratorOption {
	return func(g *IDGenerator) {
		g.now = now
	}
}

func NewIDGenerator(prefix string, opts ...IDGeneratorOption) *IDGenerator {
	g := &IDGenerator{
		prefix: prefix,
		now:    time.Now,
		random: rand.Reader,
		issued: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BookingID returns prefix + 8 timestamp digits + 4 base-36 characters, e.g. BK12345678A1B2.
func (g *IDGenerator) BookingID() (string, error) {
	ms := g.now().UnixMilli()

	g.mu.Lock()
	defer g.mu.Unlock()

	if ms != g.lastMilli {
		g.lastMilli = ms
		clear(g.issued)
	}
	for range maxSuffixAttempt {
		suffix, err := g.randomBase36(bookingRandLen)
		if err != nil {
			return "", err
		}
		if _, dup := g.issued[suffix]; dup {
			continue
		}
		g.issued[suffix] = struct{}{}
		return fmt.Sprintf("%s%08d%s", g.prefix, ms%timestampDigits, suffix), nil
	}
	return "", apperror.Newf(apperror.ErrDuplicateBookingID, "no free booking id suffix in millisecond %d", ms)
}

func (g *IDGenerator) ConfirmationCode() (string, error) {
	return g.randomBase36(confirmationLen)
}

// randomBase36 uses rejection sampling so every character is equally likely.
func (g *IDGenerator) randomBase36(n int) (string, error) {
	const limit = 256 - 256%len(base36Alphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return "", apperror.New(apperror.ErrComputation, "read random bytes", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, base36Alphabet[int(b)%len(base36Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
