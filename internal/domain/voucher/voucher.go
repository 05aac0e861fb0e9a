// Package voucher issues the human-readable codes printed on cash book receipts.
//
// A code is PREFIX + YYMMDD + a four digit suffix, e.g. CV2401011234. The prefix
// follows the entry type: CV for income, DV for expense and JV for anything else.
// The date part comes from the generator clock, not the entry's business date.
// Codes are not unique by construction; the store rejects duplicates and the
// caller asks for another one.
package voucher

import (
	"math/rand/v2"
	"regexp"
	"sync"
	"time"

	"github.com/propdesk-cashbook/internal/domain/shared"
)

const (
	PrefixCredit  = "CV"
	PrefixDebit   = "DV"
	PrefixJournal = "JV"

	suffixMin  = 1000
	suffixSpan = 9000 // suffix is drawn from [1000, 9999]
)

var codePattern = regexp.MustCompile(`^(CV|DV|JV)(\d{2})(\d{2})(\d{2})(\d{4})$`)

// Generator draws voucher numbers. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
	loc *time.Location
}

// Option configures a Generator
type Option func(*Generator)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithSource overrides the random source
func WithSource(src rand.Source) Option {
	return func(g *Generator) { g.rnd = rand.New(src) }
}

// NewGenerator creates a generator that stamps dates in loc
func NewGenerator(loc *time.Location, opts ...Option) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	g := &Generator{
		rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now: time.Now,
		loc: loc,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PrefixFor maps an entry type to its voucher prefix
func PrefixFor(t shared.TransactionType) string {
	switch t {
	case shared.TransactionTypeIncome:
		return PrefixCredit
	case shared.TransactionTypeExpense:
		return PrefixDebit
	default:
		return PrefixJournal
	}
}

// Next returns a fresh voucher number for an entry of type t
func (g *Generator) Next(t shared.TransactionType) string {
	g.mu.Lock()
	suffix := suffixMin + g.rnd.IntN(suffixSpan)
	stamp := g.now().In(g.loc).Format("060102")
	g.mu.Unlock()

	return PrefixFor(t) + stamp + itoa4(suffix)
}

func itoa4(n int) string {
	b := [4]byte{}
	for i := 3; i >= 0; i-- {
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[:])
}

// Code is a parsed voucher number
type Code struct {
	Prefix string
	Date   time.Time
	Suffix string
}

// Parse validates a voucher number and splits it into its parts
func Parse(s string) (Code, error) {
	m := codePattern.FindStringSubmatch(s)
	if m == nil {
		return Code{}, shared.ValidationError{Field: "voucher_number", Message: "must look like CV2401011234"}
	}

	date, err := time.Parse("060102", m[2]+m[3]+m[4])
	if err != nil {
		return Code{}, shared.ValidationError{Field: "voucher_number", Message: "contains an invalid date"}
	}

	return Code{Prefix: m[1], Date: date, Suffix: m[5]}, nil
}
