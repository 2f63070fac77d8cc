package generation

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"When can I view it?", "when can i view it"},
		{"  hello   world  ", "hello world"},
		{"Price?!", "price"},
		{"already normal", "already normal"},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCacheKeyStability(t *testing.T) {
	a := CacheKey("u1", "When can I view it?", "conv_1")
	b := CacheKey("u1", "when can   i view it", "conv_1")
	if a != b {
		t.Error("equivalent queries must map to the same key")
	}

	if CacheKey("u2", "when can i view it", "conv_1") == a {
		t.Error("different users must not share keys")
	}
	if CacheKey("u1", "when can i view it", "conv_2") == a {
		t.Error("different conversations must not share keys")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}
