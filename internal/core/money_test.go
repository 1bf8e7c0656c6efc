package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1500.00", "1500", true},
		{"100,50", "100.5", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"1.005", "1.005", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0,00", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatBRL(t *testing.T) {
	d, err := ParseAmount("1450")
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatBRL(d); got != "R$ 1450.00" {
		t.Fatalf("unexpected format: %q", got)
	}
}
