package workflow

import (
	"testing"
	"time"
)

// TestIDGenerator_SameTick は同一ミリ秒内でのID衝突回避を検証する。
func TestIDGenerator_SameTick(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	gen := &IDGenerator{now: func() time.Time { return fixed }}

	a := gen.Next()
	b := gen.Next()
	c := gen.Next()

	if a != 1700000000000 {
		t.Errorf("first ID = %d, want 1700000000000", a)
	}
	if b != a+1 || c != b+1 {
		t.Errorf("same-tick IDs not strictly increasing: %d, %d, %d", a, b, c)
	}
}

// TestIDGenerator_Monotonic は時計が進んだ場合にその時刻が使われること、
// 巻き戻った場合でも単調性が保たれることを検証する。
func TestIDGenerator_Monotonic(t *testing.T) {
	current := time.UnixMilli(1700000000000)
	gen := &IDGenerator{now: func() time.Time { return current }}

	a := gen.Next()
	current = time.UnixMilli(1700000005000)
	b := gen.Next()
	if b != 1700000005000 {
		t.Errorf("ID = %d, want 1700000005000", b)
	}

	// 時計の巻き戻り
	current = time.UnixMilli(1699999999000)
	c := gen.Next()
	if c <= b {
		t.Errorf("monotonicity broken: %d after %d after %d", c, b, a)
	}
}
