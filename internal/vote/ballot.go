package vote

import "strings"

// Ballot counts votes for one window. The leader is the first value to reach
// the highest count.
type Ballot struct {
	counts map[string]int
	leader string
	best   int
	total  int
}

func NewBallot() *Ballot {
	return &Ballot{counts: make(map[string]int)}
}

// Add records a vote; blank votes are ignored.
func (b *Ballot) Add(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	b.counts[value]++
	b.total++

	if count := b.counts[value]; count > b.best {
		b.best = count
		b.leader = value
	}
}

// Winner returns the leading value and its count, or false when no vote
// was cast.
func (b *Ballot) Winner() (string, int, bool) {
	if b.total == 0 {
		return "", 0, false
	}

	return b.leader, b.best, true
}

func (b *Ballot) Total() int {
	return b.total
}

func (b *Ballot) Reset() {
	clear(b.counts)
	b.leader = ""
	b.best = 0
	b.total = 0
}
