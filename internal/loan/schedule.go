package loan

import "time"

// ScheduleRule decides how far an open loan's due date moves after a
// payment. Closed loans never advance.
type ScheduleRule func(due time.Time, freq Frequency) time.Time

// AdvanceByFrequency moves weekly loans one week and monthly loans one
// calendar month. This is the default.
func AdvanceByFrequency(due time.Time, freq Frequency) time.Time {
	if freq == FrequencyMonthly {
		return due.AddDate(0, 1, 0)
	}

	return due.AddDate(0, 0, 7)
}

// AdvanceFixedWeek adds seven days regardless of the declared frequency.
// The Android app always did this, under-advancing monthly loans; it stays
// available as a compatibility mode for books kept under the old rule.
func AdvanceFixedWeek(due time.Time, _ Frequency) time.Time {
	return due.AddDate(0, 0, 7)
}
