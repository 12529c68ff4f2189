package discord

import "testing"

func TestNewSessionToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"abc", "Bot abc"},
		{"  abc  ", "Bot abc"},
		{"Bot abc", "Bot abc"},
		{"bot abc", "bot abc"},
	}
	for _, tt := range tests {
		s, err := NewSession(tt.token)
		if err != nil {
			t.Fatalf("NewSession(%q) failed: %v", tt.token, err)
		}
		if s.Token != tt.want {
			t.Errorf("NewSession(%q).Token = %q, want %q", tt.token, s.Token, tt.want)
		}
	}
}
