package fat16

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	specs := []struct {
		input uint16
		exp   time.Time
	}{
		{0x0021, time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{0x506E, time.Date(2020, time.March, 14, 0, 0, 0, 0, time.UTC)},
		{0xFF9F, time.Date(2107, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{0x0000, time.Time{}},
		{0x0020, time.Time{}},
		{0x0001, time.Time{}},
	}

	for specIndex, spec := range specs {
		if got := ParseDate(spec.input); !got.Equal(spec.exp) {
			t.Errorf("[spec %d] expected %v; got %v", specIndex, spec.exp, got)
		}
	}
}

func TestParseTime(t *testing.T) {
	specs := []struct {
		input                   uint16
		expHour, expMin, expSec int
	}{
		{0x0000, 0, 0, 0},
		{0x7925, 15, 9, 10},
		{0xBF7D, 23, 59, 58},
		{0xFFFF, 23, 59, 59},
	}

	for specIndex, spec := range specs {
		got := ParseTime(spec.input)
		if got.Hour() != spec.expHour || got.Minute() != spec.expMin || got.Second() != spec.expSec {
			t.Errorf("[spec %d] expected %02d:%02d:%02d; got %v", specIndex, spec.expHour, spec.expMin, spec.expSec, got)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	stamp := time.Date(2001, time.September, 9, 1, 46, 40, 0, time.UTC)

	if got := ParseDate(EncodeDate(stamp)); got.Year() != 2001 || got.Month() != time.September || got.Day() != 9 {
		t.Errorf("unexpected date round trip: %v", got)
	}

	if got := ParseTime(EncodeTime(stamp)); got.Hour() != 1 || got.Minute() != 46 || got.Second() != 40 {
		t.Errorf("unexpected time round trip: %v", got)
	}

	if got := EncodeDate(time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)) >> 9; got != 0 {
		t.Errorf("expected dates before 1980 to clamp to year 0; got %d", got)
	}
}
