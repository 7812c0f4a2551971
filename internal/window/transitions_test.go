package window_test

import (
	"testing"

	"github.com/tashiscool/alovoa-sub007/internal/window"
)

var allStatuses = []window.Status{
	window.StatusPendingBoth,
	window.StatusPendingUserA,
	window.StatusPendingUserB,
	window.StatusConfirmed,
	window.StatusDeclinedByA,
	window.StatusDeclinedByB,
	window.StatusExpired,
	window.StatusExtensionPending,
}

var terminalStatuses = []window.Status{
	window.StatusConfirmed,
	window.StatusDeclinedByA,
	window.StatusDeclinedByB,
	window.StatusExpired,
}

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	for _, s := range allStatuses {
		got, err := window.ParseStatus(string(s))
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "", "pending_both", " PENDING_BOTH"} {
		if _, err := window.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed — confirmation path ────────────────────────────────

func TestIsTransitionAllowed_ConfirmationPath(t *testing.T) {
	cases := []struct {
		from window.Status
		to   window.Status
	}{
		{window.StatusPendingBoth, window.StatusPendingUserA},
		{window.StatusPendingBoth, window.StatusPendingUserB},
		{window.StatusPendingUserA, window.StatusConfirmed},
		{window.StatusPendingUserB, window.StatusConfirmed},
	}
	for _, c := range cases {
		if !window.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// A single confirmation never completes the window on its own.
func TestIsTransitionAllowed_NoDirectConfirmFromPendingBoth(t *testing.T) {
	if window.IsTransitionAllowed(window.StatusPendingBoth, window.StatusConfirmed) {
		t.Error("IsTransitionAllowed(PENDING_BOTH → CONFIRMED) should be false")
	}
}

// ── IsTransitionAllowed — decline and expiry from every live state ─────────

func TestIsTransitionAllowed_DeclineAndExpireFromNonTerminal(t *testing.T) {
	nonTerminals := []window.Status{
		window.StatusPendingBoth,
		window.StatusPendingUserA,
		window.StatusPendingUserB,
		window.StatusExtensionPending,
	}
	closers := []window.Status{
		window.StatusDeclinedByA,
		window.StatusDeclinedByB,
		window.StatusExpired,
	}
	for _, from := range nonTerminals {
		for _, to := range closers {
			if !window.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be true", from, to)
			}
		}
	}
}

// ── IsTransitionAllowed — extension round trip ─────────────────────────────

func TestIsTransitionAllowed_ExtensionRoundTrip(t *testing.T) {
	pendings := []window.Status{
		window.StatusPendingBoth,
		window.StatusPendingUserA,
		window.StatusPendingUserB,
	}
	for _, p := range pendings {
		if !window.IsTransitionAllowed(p, window.StatusExtensionPending) {
			t.Errorf("IsTransitionAllowed(%s → EXTENSION_PENDING) should be true", p)
		}
		if !window.IsTransitionAllowed(window.StatusExtensionPending, p) {
			t.Errorf("IsTransitionAllowed(EXTENSION_PENDING → %s) should be true", p)
		}
	}
	if window.IsTransitionAllowed(window.StatusExtensionPending, window.StatusConfirmed) {
		t.Error("IsTransitionAllowed(EXTENSION_PENDING → CONFIRMED) should be false")
	}
}

// ── IsTransitionAllowed — terminal states have no outgoing transitions ─────

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	for _, from := range terminalStatuses {
		for _, to := range allStatuses {
			if window.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

// ── IsTransitionAllowed — self-transitions are forbidden ──────────────────

func TestIsTransitionAllowed_Self(t *testing.T) {
	for _, s := range allStatuses {
		if window.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}

// ── Status helpers ─────────────────────────────────────────────────────────

func TestStatus_IsTerminal(t *testing.T) {
	for _, s := range terminalStatuses {
		if !s.IsTerminal() {
			t.Errorf("IsTerminal(%s) should be true", s)
		}
	}
	for _, s := range []window.Status{
		window.StatusPendingBoth, window.StatusPendingUserA,
		window.StatusPendingUserB, window.StatusExtensionPending,
	} {
		if s.IsTerminal() {
			t.Errorf("IsTerminal(%s) should be false", s)
		}
	}
}

func TestStatus_IsPending(t *testing.T) {
	pendings := map[window.Status]bool{
		window.StatusPendingBoth:  true,
		window.StatusPendingUserA: true,
		window.StatusPendingUserB: true,
	}
	for _, s := range allStatuses {
		if got := s.IsPending(); got != pendings[s] {
			t.Errorf("IsPending(%s) = %v, want %v", s, got, pendings[s])
		}
	}
}
