package server

import "testing"

func TestSessionStateString(t *testing.T) {
	cases := []struct {
		st   sessionState
		want string
	}{
		{stateConnecting, "connecting"},
		{stateAuthenticating, "authenticating"},
		{stateActive, "active"},
		{stateClosing, "closing"},
		{sessionState(99), "unknown"},
	}
	for _, tc := range cases {
		if got := tc.st.String(); got != tc.want {
			t.Errorf("sessionState(%d).String() = %q, want %q", tc.st, got, tc.want)
		}
	}
}

func TestCommandVerb(t *testing.T) {
	if got := commandVerb("buy_stock 1 2"); got != "BUY_STOCK" {
		t.Fatalf("commandVerb = %q, want BUY_STOCK", got)
	}
	if got := commandVerb("   "); got != "EMPTY" {
		t.Fatalf("commandVerb(blank) = %q, want EMPTY", got)
	}
}

func TestStatusOf(t *testing.T) {
	if got := statusOf("ERROR: Product ID 9 not found"); got != "error" {
		t.Fatalf("statusOf(error line) = %q, want error", got)
	}
	if got := statusOf("SUCCESS: Bought 2 x Mouse"); got != "ok" {
		t.Fatalf("statusOf(success line) = %q, want ok", got)
	}
}
