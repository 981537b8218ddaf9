package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"", 10, 10},
		{"x", 5, 5},
		{" 42", 7, 7}, // strconv.Atoi rejects whitespace
		{"999999999999999999999999", -1, -1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampInt(t *testing.T) {
	cases := []struct {
		n, lo, hi, want int
	}{
		{5, 1, 10, 5},
		{0, 1, 10, 1},
		{11, 1, 10, 10},
		{1, 1, 10, 1},
		{10, 1, 10, 10},
	}
	for _, tc := range cases {
		if got := ClampInt(tc.n, tc.lo, tc.hi); got != tc.want {
			t.Fatalf("ClampInt(%d, %d, %d) = %d; want %d", tc.n, tc.lo, tc.hi, got, tc.want)
		}
	}
}
