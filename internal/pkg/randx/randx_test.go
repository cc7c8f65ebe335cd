package randx

import "testing"

func TestIDsCarryPrefix(t *testing.T) {
	tests := []struct {
		gen    func() string
		prefix string
	}{
		{UserID, PrefixUser},
		{ServerID, PrefixServer},
		{ChannelID, PrefixChannel},
		{MessageID, PrefixMessage},
		{RoleID, PrefixRole},
	}

	for _, tc := range tests {
		id := tc.gen()
		if !HasPrefix(id, tc.prefix) {
			t.Errorf("id %q does not match prefix %q", id, tc.prefix)
		}
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id := MessageID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestHasPrefixRejectsMalformed(t *testing.T) {
	for _, id := range []string{"user", "userXYZ", "user0123456789abcd", "ch0123456789ab", "user0123456789AB"} {
		if HasPrefix(id, PrefixUser) {
			t.Errorf("HasPrefix(%q) = true", id)
		}
	}
}
