package ledger

import "sync/atomic"

// Clock hands out event sequence numbers.
//
// Every appended event is stamped with a strictly increasing value from this
// clock. It resumes from the greatest sequence in the store when a ledger is
// opened. A sequence whose transaction rolls back is simply never used, so
// gaps are possible but reuse is not.
type Clock struct {
	seq atomic.Int64
}

// NewClockAt creates a clock whose next value is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
