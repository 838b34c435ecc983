package calendar

import (
	"time"

	"github.com/robfig/cron/v3"
)

const midnightSpec = "0 0 * * *"

var midnight cron.Schedule

func init() {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(midnightSpec)
	if err != nil {
		panic(err)
	}
	midnight = sched
}

// NextRollover returns the next local midnight strictly after now. The
// renderer rebuilds its months when it passes this instant so the today
// highlight moves with the date.
func NextRollover(now time.Time) time.Time {
	return midnight.Next(now)
}
