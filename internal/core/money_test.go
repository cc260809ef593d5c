package core

import "testing"

func TestFormatTenge(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "0 ₸"},
		{999, "999 ₸"},
		{1000, "1 000 ₸"},
		{2500000, "2 500 000 ₸"},
		{-15000, "-15 000 ₸"},
	}
	for _, tc := range cases {
		if got := FormatTenge(tc.in); got != tc.out {
			t.Fatalf("FormatTenge(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(8.12345); got != 8.12 {
		t.Fatalf("Round2 = %v", got)
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := map[float64]int64{
		2.5:  3,
		2.49: 2,
		-2.5: -2,
		-2.6: -3,
		0:    0,
	}
	for in, want := range tests {
		if got := RoundHalfUp(in); got != want {
			t.Errorf("RoundHalfUp(%v) = %d, want %d", in, got, want)
		}
	}
}
