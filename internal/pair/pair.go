// Package pair defines the canonical unordered user-pair key.
//
// Compatibility results and match windows are keyed by a user pair, and
// every lookup must be order-independent: find(A,B) ≡ find(B,A). Storing
// the lower id first makes the pair a single canonical value, so a plain
// unique constraint covers "exactly one row per pair".
package pair

// Key identifies an unordered pair of users. Lo < Hi always holds.
type Key struct {
	Lo int64
	Hi int64
}

// New returns the canonical key for the two users, lower id first.
func New(a, b int64) Key {
	if a > b {
		a, b = b, a
	}
	return Key{Lo: a, Hi: b}
}

// Has returns true when userID is one of the pair.
func (k Key) Has(userID int64) bool {
	return k.Lo == userID || k.Hi == userID
}

// Other returns the partner of userID, and false when userID is not in the pair.
func (k Key) Other(userID int64) (int64, bool) {
	switch userID {
	case k.Lo:
		return k.Hi, true
	case k.Hi:
		return k.Lo, true
	}
	return 0, false
}
