package literal

import "testing"

func TestParseDurationSingleUnits(t *testing.T) {
	cases := []struct {
		in   string
		want Duration
	}{
		{"1ns", 1},
		{"1us", NanosPerMicro},
		{"1ms", NanosPerMilli},
		{"1s", NanosPerSec},
		{"1m", NanosPerMin},
		{"1h", NanosPerHour},
		{"1d", NanosPerDay},
		{"1w", NanosPerWeek},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseDuration(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseDurationSumsFragments(t *testing.T) {
	got, err := ParseDuration("5s5s5s5s5s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Duration(25 * NanosPerSec)
	if got != want {
		t.Fatalf("got %d want %d", got, want)
	}
}

func TestParseDurationRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "5", "5x"} {
		if _, err := ParseDuration(in); err == nil {
			t.Fatalf("ParseDuration(%q): expected error", in)
		}
	}
}

func TestDisplayDuration(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"3w2h15ms", "3w2h15ms"},
		{"5s5s5s5s5s", "25s"},
	}
	for _, c := range cases {
		d, err := ParseDuration(c.in)
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", c.in, err)
		}
		if got := d.String(); got != c.want {
			t.Fatalf("Duration(%q).String() = %q, want %q", c.in, got, c.want)
		}
	}

	if got, want := Duration(0).String(), "0s"; got != want {
		t.Fatalf("Duration(0).String() = %q, want %q", got, want)
	}

	composite := Duration(20*NanosPerWeek + 6*NanosPerDay + 13*NanosPerHour + 11*NanosPerMin +
		10*NanosPerSec + 9*NanosPerMilli + 8*NanosPerMicro + 500)
	if got, want := composite.String(), "20w6d13h11m10s9ms8us500ns"; got != want {
		t.Fatalf("composite.String() = %q, want %q", got, want)
	}
}

func TestHasDurationSuffix(t *testing.T) {
	if !HasDurationSuffix("10s") {
		t.Fatalf("expected 10s to look like a duration")
	}
	if HasDurationSuffix("10") {
		t.Fatalf("bare integer must not look like a duration")
	}
	if HasDurationSuffix("abc") {
		t.Fatalf("non-numeric input must not look like a duration")
	}
}
