// ABOUTME: Packed-date helpers for record timestamps.
// ABOUTME: Dates are decimal-packed integers in YYYYMMDDhhmmss form.
package models

import "time"

// Records carry their date as a single int64 packed in decimal:
// year*1e10 + month*1e8 + day*1e6 + hour*1e4 + minute*1e2 + second.
// The encode/extract functions below are exact inverses for any valid
// (y, m, d, h, mi, s) decomposition.

// EncodeDate packs a calendar date with a zero time-of-day.
func EncodeDate(year, month, day int) int64 {
	return EncodeDateTime(year, month, day, 0, 0, 0)
}

// EncodeDateTime packs a full calendar date and time-of-day.
func EncodeDateTime(year, month, day, hour, minute, second int) int64 {
	return int64(year)*10000000000 +
		int64(month)*100000000 +
		int64(day)*1000000 +
		int64(hour)*10000 +
		int64(minute)*100 +
		int64(second)
}

// DateYear extracts the year from a packed date.
func DateYear(date int64) int {
	return int(date / 10000000000)
}

// DateMonth extracts the month from a packed date.
func DateMonth(date int64) int {
	return int(date / 100000000 % 100)
}

// DateDay extracts the day of month from a packed date.
func DateDay(date int64) int {
	return int(date / 1000000 % 100)
}

// DateHour extracts the hour from a packed date.
func DateHour(date int64) int {
	return int(date / 10000 % 100)
}

// DateMinute extracts the minute from a packed date.
func DateMinute(date int64) int {
	return int(date / 100 % 100)
}

// DateSecond extracts the second from a packed date.
func DateSecond(date int64) int {
	return int(date % 100)
}

// DateFromTime packs a time.Time into the record date form.
func DateFromTime(t time.Time) int64 {
	return EncodeDateTime(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// TimeFromDate converts a packed date to a time.Time in the local zone.
func TimeFromDate(date int64) time.Time {
	return time.Date(
		DateYear(date), time.Month(DateMonth(date)), DateDay(date),
		DateHour(date), DateMinute(date), DateSecond(date), 0, time.Local,
	)
}
