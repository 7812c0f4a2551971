package pair_test

import (
	"testing"

	"github.com/tashiscool/alovoa-sub007/internal/pair"
)

func TestNew_CanonicalOrder(t *testing.T) {
	cases := []struct {
		a, b   int64
		lo, hi int64
	}{
		{1, 2, 1, 2},
		{2, 1, 1, 2},
		{42, 7, 7, 42},
		{7, 42, 7, 42},
	}
	for _, c := range cases {
		k := pair.New(c.a, c.b)
		if k.Lo != c.lo || k.Hi != c.hi {
			t.Errorf("New(%d, %d) = {%d, %d}, want {%d, %d}", c.a, c.b, k.Lo, k.Hi, c.lo, c.hi)
		}
	}
}

func TestNew_OrderIndependent(t *testing.T) {
	if pair.New(3, 9) != pair.New(9, 3) {
		t.Error("New(3,9) and New(9,3) must produce the same key")
	}
}

func TestHas(t *testing.T) {
	k := pair.New(5, 11)
	if !k.Has(5) || !k.Has(11) {
		t.Error("Has must be true for both members")
	}
	if k.Has(6) {
		t.Error("Has(6) must be false for pair (5,11)")
	}
}

func TestOther(t *testing.T) {
	k := pair.New(5, 11)
	if other, ok := k.Other(5); !ok || other != 11 {
		t.Errorf("Other(5) = (%d, %v), want (11, true)", other, ok)
	}
	if other, ok := k.Other(11); !ok || other != 5 {
		t.Errorf("Other(11) = (%d, %v), want (5, true)", other, ok)
	}
	if _, ok := k.Other(99); ok {
		t.Error("Other(99) must report false for a non-member")
	}
}
