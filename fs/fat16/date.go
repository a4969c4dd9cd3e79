package fat16

import "time"

// ParseDate decodes a FAT date stamp. Bits 0-4 hold the day of the month,
// bits 5-8 the month and bits 9-15 the years since 1980. A zero day or
// month yields the zero time.
func ParseDate(input uint16) time.Time {
	day := input & 0x1F
	month := input & 0x1E0 >> 5
	year := input & 0xFE00 >> 9

	if day == 0 || month == 0 {
		return time.Time{}
	}

	return time.Date(1980+int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC)
}

// ParseTime decodes a FAT time stamp. Bits 0-4 hold a 2-second count, bits
// 5-10 the minutes and bits 11-15 the hours. The result is on January 1 of
// year 1; out of range values clamp to 23:59:59.
func ParseTime(input uint16) time.Time {
	seconds := int(input&0x1F) * 2
	minutes := input & 0x7E0 >> 5
	hours := input & 0xF800 >> 11

	result := time.Date(1, 1, 1, int(hours), int(minutes), seconds, 0, time.UTC)
	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}
	return result
}

// EncodeDate is the inverse of ParseDate. Years outside 1980-2107 clamp
// to the nearest representable year.
func EncodeDate(t time.Time) uint16 {
	year := t.Year() - 1980
	switch {
	case year < 0:
		year = 0
	case year > 127:
		year = 127
	}
	return uint16(year)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
}

// EncodeTime is the inverse of ParseTime with 2-second granularity.
func EncodeTime(t time.Time) uint16 {
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}
