package stats

import (
	"errors"
	"net/http"

	"github.com/famcal/famcal/internal/rest"
	"github.com/famcal/famcal/pkg/event"
	"github.com/famcal/famcal/pkg/user"
	log "github.com/sirupsen/logrus"
)

type DailyStatsDTO struct {
	Date     string `json:"date"`
	Bookings int    `json:"bookings"`
	Tasks    int    `json:"tasks"`
	Total    int    `json:"total"`
}

type CategoryStatsDTO struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type OverviewDTO struct {
	StartDate        string             `json:"startDate"`
	EndDate          string             `json:"endDate"`
	UpcomingBookings int                `json:"upcomingBookings"`
	PendingTasks     int                `json:"pendingTasks"`
	ThisWeek         int                `json:"thisWeek"`
	Days             []DailyStatsDTO    `json:"days"`
	Categories       []CategoryStatsDTO `json:"categories"`
}

type StatsHandler struct {
	statsService     StatsService
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, csvStatsRenderer}
}

// GetOverview godoc
// @Summary Household overview
// @Description Counts of upcoming bookings, tasks and the coming week's events in the current scope.
// @Description Send "Accept: text/csv" for a per-day CSV export.
// @Tags Stats
// @Produce json
// @Produce text/csv
// @Success 200 {object} OverviewDTO
// @Router /api/stats/overview [get]
// @Security BearerAuth
func (handler *StatsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := handler.statsService.GetOverview(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
			return
		}
		log.Errorf("overview failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Something went wrong", err.Error())
		return
	}

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderStats(overview)
		if err != nil {
			rest.WriteError(w, http.StatusInternalServerError, "Could not render CSV", err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write csv: %v", err)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, overviewToDTO(overview))
}

func overviewToDTO(overview Overview) OverviewDTO {
	days := make([]DailyStatsDTO, 0, len(overview.Days))
	for _, day := range overview.Days {
		days = append(days, DailyStatsDTO{
			Date:     day.Date.Format(event.DateLayout),
			Bookings: day.Bookings,
			Tasks:    day.Tasks,
			Total:    day.Total,
		})
	}
	categories := make([]CategoryStatsDTO, 0, len(overview.Categories))
	for _, c := range overview.Categories {
		categories = append(categories, CategoryStatsDTO{Category: c.Category, Count: c.Count})
	}
	return OverviewDTO{
		StartDate:        overview.StartDate.Format(event.DateLayout),
		EndDate:          overview.EndDate.Format(event.DateLayout),
		UpcomingBookings: overview.UpcomingBookings,
		PendingTasks:     overview.PendingTasks,
		ThisWeek:         overview.ThisWeek,
		Days:             days,
		Categories:       categories,
	}
}
