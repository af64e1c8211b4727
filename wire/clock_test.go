package wire

import "testing"

func TestTransactionClockMonotonic(t *testing.T) {
	var c TransactionClock
	a := c.Next(1000)
	b := c.Next(1000)
	cc := c.Next(1000)
	if !(a < b && b < cc) {
		t.Fatalf("expected strictly increasing ids, got %d %d %d", a, b, cc)
	}
}

func TestTransactionClockUsesWallClockWhenAhead(t *testing.T) {
	var c TransactionClock
	a := c.Next(1000)
	b := c.Next(5000)
	if a != 1000 || b != 5000 {
		t.Fatalf("expected wall-clock passthrough, got %d then %d", a, b)
	}
}

func TestTransactionClockNeverGoesBackwards(t *testing.T) {
	var c TransactionClock
	c.Next(5000)
	next := c.Next(1000)
	if next <= 5000 {
		t.Fatalf("expected id > 5000 even though wall clock went backwards, got %d", next)
	}
}
