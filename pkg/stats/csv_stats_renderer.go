package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type StatsRenderer interface {
	RenderStats(overview Overview) (string, error)
}

type CsvStatsRendererImpl struct {
}

func NewCsvStatsTransformer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

// RenderStats writes one row per day of the week followed by a total row.
func (t *CsvStatsRendererImpl) RenderStats(overview Overview) (string, error) {
	data := make([][]string, 0, len(overview.Days)+2)
	data = append(data, []string{"Date", "Bookings", "Tasks", "SUM"})

	bookings, tasks := 0, 0
	for _, day := range overview.Days {
		data = append(data, []string{
			day.Date.Format("02/01/2006"),
			strconv.Itoa(day.Bookings),
			strconv.Itoa(day.Tasks),
			strconv.Itoa(day.Total),
		})
		bookings += day.Bookings
		tasks += day.Tasks
	}
	data = append(data, []string{"Total", strconv.Itoa(bookings), strconv.Itoa(tasks), strconv.Itoa(overview.ThisWeek)})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}
