package backoff

import (
	"testing"
	"time"
)

func TestExponentialDelay(t *testing.T) {
	b := NewWithJitter(Policy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Exponential:  true,
	}, FixedJitter(1.0))

	cases := []struct {
		retry int
		want  time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{7, 5 * time.Second},  // 6400ms capped
		{20, 5 * time.Second}, // stays capped
	}

	for _, tc := range cases {
		if got := b.Delay(tc.retry); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.retry, got, tc.want)
		}
	}
}

func TestLinearDelay(t *testing.T) {
	b := NewWithJitter(Policy{
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Exponential:  false,
	}, FixedJitter(1.0))

	for _, retry := range []int{1, 2, 5, 10} {
		if got := b.Delay(retry); got != 250*time.Millisecond {
			t.Errorf("Delay(%d) = %v, want 250ms", retry, got)
		}
	}
}

func TestJitterBounds(t *testing.T) {
	b := NewWithJitter(Policy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Exponential:  true,
	}, NewUniformJitter(42))

	for retry := 1; retry <= 4; retry++ {
		base := 100 * time.Millisecond << (retry - 1)
		lo := time.Duration(float64(base) * JitterMin)
		hi := time.Duration(float64(base) * JitterMax)
		for i := 0; i < 200; i++ {
			d := b.Delay(retry)
			if d < lo || d > hi {
				t.Fatalf("Delay(%d) = %v outside [%v, %v]", retry, d, lo, hi)
			}
		}
	}
}

func TestJitterAppliesAfterCap(t *testing.T) {
	// At the cap the jittered delay may exceed MaxDelay by up to 25%.
	b := NewWithJitter(Policy{
		InitialDelay: 1 * time.Second,
		MaxDelay:     2 * time.Second,
		Exponential:  true,
	}, FixedJitter(1.25))

	want := 2500 * time.Millisecond
	if got := b.Delay(5); got != want {
		t.Errorf("Delay(5) = %v, want %v", got, want)
	}
}

func TestSeededJitterIsDeterministic(t *testing.T) {
	p := Policy{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Exponential: true}
	a := NewWithJitter(p, NewUniformJitter(7))
	b := NewWithJitter(p, NewUniformJitter(7))

	for retry := 1; retry <= 10; retry++ {
		if da, db := a.Delay(retry), b.Delay(retry); da != db {
			t.Fatalf("same seed diverged at retry %d: %v vs %v", retry, da, db)
		}
	}
}

func TestRetryBelowOneTreatedAsFirst(t *testing.T) {
	b := NewWithJitter(Policy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Exponential:  true,
	}, FixedJitter(1.0))

	if got := b.Delay(0); got != 100*time.Millisecond {
		t.Errorf("Delay(0) = %v, want 100ms", got)
	}
}
