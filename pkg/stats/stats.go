package stats

import (
	"time"
)

const weekDays = 7

type DailyStats struct {
	Date     time.Time
	Bookings int
	Tasks    int
	Total    int
}

type CategoryStats struct {
	Category string
	Count    int
}

// Overview summarizes the events of the current scope. StartDate is today and EndDate the last day
// of the coming week, both as dates at UTC midnight.
type Overview struct {
	StartDate        time.Time
	EndDate          time.Time
	UpcomingBookings int
	PendingTasks     int
	ThisWeek         int
	Days             []DailyStats
	Categories       []CategoryStats
}
