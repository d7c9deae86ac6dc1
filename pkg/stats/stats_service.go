package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/famcal/famcal/internal/utils"
	"github.com/famcal/famcal/pkg/event"
	"github.com/famcal/famcal/pkg/user"
	log "github.com/sirupsen/logrus"
)

const uncategorized = "Other"

type EventLister interface {
	ListEvents(ctx context.Context) []event.Event
}

type StatsService interface {
	GetOverview(ctx context.Context) (Overview, error)
}

type StatsServiceImpl struct {
	events EventLister
	clock  utils.Clock
}

func NewStatsServiceImpl(events EventLister) *StatsServiceImpl {
	return &StatsServiceImpl{
		events: events,
		clock:  &utils.SystemClock{},
	}
}

func (s *StatsServiceImpl) GetOverview(ctx context.Context) (Overview, error) {
	if _, err := user.CurrentId(ctx); err != nil {
		return Overview{}, fmt.Errorf("failed to get current user: %w", err)
	}
	events := s.events.ListEvents(ctx)

	today := utils.Today(s.clock)
	weekEnd := today.AddDate(0, 0, weekDays)

	days := make([]DailyStats, 0, weekDays)
	dayIndex := make(map[time.Time]int, weekDays)
	for date := today; date.Before(weekEnd); date = date.AddDate(0, 0, 1) {
		dayIndex[date] = len(days)
		days = append(days, DailyStats{Date: date})
	}

	overview := Overview{StartDate: today, EndDate: weekEnd.AddDate(0, 0, -1)}
	byCategory := make(map[string]int)
	for _, e := range events {
		date := utils.DateOf(e.Date)
		upcoming := !date.Before(today)

		switch e.Type {
		case event.TypeBooking:
			if upcoming {
				overview.UpcomingBookings++
			}
		case event.TypeTask:
			overview.PendingTasks++
		}

		idx, inWeek := dayIndex[date]
		if !inWeek {
			continue
		}
		overview.ThisWeek++
		days[idx].Total++
		if e.Type == event.TypeTask {
			days[idx].Tasks++
		} else {
			days[idx].Bookings++
		}
		category := uncategorized
		if e.Category != nil {
			category = *e.Category
		}
		byCategory[category]++
	}
	log.Tracef("Overview from %d events: %+v", len(events), overview)

	overview.Days = days
	overview.Categories = make([]CategoryStats, 0, len(byCategory))
	for category, count := range byCategory {
		overview.Categories = append(overview.Categories, CategoryStats{Category: category, Count: count})
	}
	sort.Slice(overview.Categories, func(i, j int) bool {
		if overview.Categories[i].Count != overview.Categories[j].Count {
			return overview.Categories[i].Count > overview.Categories[j].Count
		}
		return overview.Categories[i].Category < overview.Categories[j].Category
	})
	return overview, nil
}
