package recurring

import "time"

// Schedule arithmetic is calendar-correct: adding a month preserves the
// day-of-month and clamps at month-end overflow (Jan 31 -> Feb 28), and a
// monthly anchor day snaps back after shorter months (anchor 31: Feb 28 ->
// Mar 31). All dates are treated as midnight UTC.

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func addMonthsClamped(t time.Time, months, anchorDay int) time.Time {
	y, m, d := t.Date()
	if anchorDay > 0 {
		d = anchorDay
	}
	m += time.Month(months)
	for m > time.December {
		m -= 12
		y++
	}
	for m < time.January {
		m += 12
		y--
	}
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDue returns the due date one period after the given one.
func NextDue(due time.Time, freq Frequency, anchorDay int) time.Time {
	due = dateOnly(due)
	switch freq {
	case Daily:
		return due.AddDate(0, 0, 1)
	case Weekly:
		return due.AddDate(0, 0, 7)
	case Monthly:
		return addMonthsClamped(due, 1, anchorDay)
	case Yearly:
		return addMonthsClamped(due, 12, anchorDay)
	}
	return due
}

// DuePeriods lists every elapsed due date of the rule up to and including
// today (and, if the rule has an end date, up to and including it), plus the
// nextDue the rule should carry afterwards. The catch-up is unbounded: a
// rule dormant for years yields that many dates in one pass.
func DuePeriods(rule Rule, today time.Time) (dates []time.Time, nextDue time.Time) {
	today = dateOnly(today)
	next := dateOnly(rule.NextDueDate)
	for !next.After(today) {
		if rule.EndDate != nil && next.After(dateOnly(*rule.EndDate)) {
			break
		}
		dates = append(dates, next)
		next = NextDue(next, rule.Frequency, rule.DayOfMonth)
	}
	return dates, next
}

// Exhausted reports whether the rule can never fire again.
func Exhausted(rule Rule, nextDue time.Time) bool {
	return rule.EndDate != nil && dateOnly(nextDue).After(dateOnly(*rule.EndDate))
}
