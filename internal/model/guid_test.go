package model

import "testing"

func TestNormalizeGUID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0xe8ebd30300723915", "0xe8ebd30300723915"},
		{"0XE8EBD30300723915", "0xe8ebd30300723915"},
		{"e8ebd30300723915", "0xe8ebd30300723915"},
		{"  0x1  ", "0x1"},
		{"", ""},
		{"na", ""},
		{"NONE", ""},
		{"null", ""},
		{"1", "0x1"},
		{"not-a-guid", "not-a-guid"},
	}
	for _, c := range cases {
		got := NormalizeGUID(c.in)
		if got != c.want {
			t.Errorf("NormalizeGUID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// TestNormalizeGUIDIdempotent checks P1: normalize(normalize(x)) == normalize(x).
func TestNormalizeGUIDIdempotent(t *testing.T) {
	inputs := []string{"0xE8EBD30300723915", "123", "", "na", "garbage-guid", "0x1"}
	for _, in := range inputs {
		once := NormalizeGUID(in)
		twice := NormalizeGUID(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
