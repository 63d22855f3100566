package mysql

import (
	"testing"
	"time"
)

func TestFormatBinaryDateTimeLengths(t *testing.T) {
	cases := []struct {
		name string
		src  []byte
		want string
	}{
		{"zero", nil, "0000-00-00"},
		{"date", []byte{0xe6, 0x07, 12, 31}, "2022-12-31"},
		{"datetime", []byte{0xe6, 0x07, 12, 31, 13, 2, 3}, "2022-12-31 13:02:03"},
		{
			"datetime-micros",
			[]byte{0xe6, 0x07, 12, 31, 13, 2, 3, 1, 0, 0, 0},
			"2022-12-31 13:02:03.000001",
		},
	}
	for _, c := range cases {
		got, err := formatBinaryDateTime(c.src)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFormatBinaryDateTimeInvalidLength(t *testing.T) {
	if _, err := formatBinaryDateTime([]byte{1, 2, 3}); err == nil {
		t.Fatal("formatBinaryDateTime accepted an invalid length")
	}
}

func TestFormatBinaryTime(t *testing.T) {
	got, err := formatBinaryTime([]byte{0, 0, 0, 0, 0, 10, 20, 30})
	if err != nil {
		t.Fatalf("formatBinaryTime: %v", err)
	}
	if got != "10:20:30" {
		t.Fatalf("got %q, want %q", got, "10:20:30")
	}

	neg, err := formatBinaryTime([]byte{1, 0, 0, 0, 0, 10, 20, 30})
	if err != nil {
		t.Fatalf("formatBinaryTime negative: %v", err)
	}
	if neg != "-10:20:30" {
		t.Fatalf("got %q, want %q", neg, "-10:20:30")
	}
}

func TestParseTemporalZeroDate(t *testing.T) {
	got, err := parseTemporal("0000-00-00", nil)
	if err != nil {
		t.Fatalf("parseTemporal: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("parseTemporal(zero date) = %v, want the zero time.Time", got)
	}
}

func TestParseTemporalDateOnly(t *testing.T) {
	got, err := parseTemporal("2022-12-31", time.UTC)
	if err != nil {
		t.Fatalf("parseTemporal: %v", err)
	}
	if got.Year() != 2022 || got.Month() != 12 || got.Day() != 31 {
		t.Fatalf("parseTemporal = %v, want 2022-12-31", got)
	}
}
