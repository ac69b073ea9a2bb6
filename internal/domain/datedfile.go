package domain

import "time"

// DatedFile represents a backup file whose filename carries its backup date.
// Values exist only for names the date parser understood, so age and the
// calendar predicates are always meaningful; undated entries never become
// DatedFiles.
type DatedFile struct {
	// Name is the filename within its tier folder
	Name string

	// Date is the calendar date parsed from the name
	Date time.Time

	// Age is the whole-day span between the run date and Date,
	// snapshotted at construction
	Age int
}

// NewDatedFile builds a DatedFile from a parsed calendar date. Both inputs
// are reduced to calendar dates before the age is computed.
func NewDatedFile(name string, date, today time.Time) DatedFile {
	d := DateOnly(date)
	t := DateOnly(today)
	return DatedFile{
		Name: name,
		Date: d,
		Age:  int(t.Sub(d).Hours() / 24),
	}
}

// FirstOfWeek reports whether the file is dated on a Monday.
func (f DatedFile) FirstOfWeek() bool {
	return f.Date.Weekday() == time.Monday
}

// FirstOfMonth reports whether the file is dated on the first day of a month.
func (f DatedFile) FirstOfMonth() bool {
	return f.Date.Day() == 1
}

// FirstOfYear reports whether the file is dated on the first of January.
func (f DatedFile) FirstOfYear() bool {
	return f.Date.Month() == time.January && f.Date.Day() == 1
}

// DateOnly strips the time of day and zone from t, leaving the calendar date
// at midnight UTC. All age arithmetic happens on these normalized values.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
