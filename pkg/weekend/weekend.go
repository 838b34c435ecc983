// Package weekend counts the weekends left before a target date.
package weekend

import (
	"time"

	"github.com/BYTE-6D65/studyclock/pkg/clock"
)

// Count returns the number of Saturday-Sunday weekends between now and
// target, at day granularity. A weekend that is already under way today is
// credited. Saturdays falling on or after target's calendar day are not.
//
// The cursor jumps from Saturday to the following Monday and from any
// weekday to the next Saturday, so the loop runs once per week.
func Count(now, target time.Time) int {
	if !now.Before(target) {
		return 0
	}

	cur := clock.Midnight(now)
	end := clock.Midnight(target.In(now.Location()))

	count := 0
	switch cur.Weekday() {
	case time.Saturday:
		count = 1
		cur = cur.AddDate(0, 0, 2)
	case time.Sunday:
		count = 1
		cur = cur.AddDate(0, 0, 1)
	}

	for cur.Before(end) {
		if cur.Weekday() == time.Saturday {
			count++
			cur = cur.AddDate(0, 0, 2)
			continue
		}
		cur = cur.AddDate(0, 0, daysUntilSaturday(cur.Weekday()))
	}

	return count
}

func daysUntilSaturday(day time.Weekday) int {
	n := (int(time.Saturday) - int(day) + 7) % 7
	if n == 0 {
		return 7
	}
	return n
}
