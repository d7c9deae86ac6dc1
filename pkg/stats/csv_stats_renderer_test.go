package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var startDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCsvStatsRendererImpl_RenderStats(t1 *testing.T) {
	type args struct {
		overview Overview
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "RenderStats with valid data",
			args: args{
				overview: Overview{
					StartDate: startDate,
					EndDate:   startDate.AddDate(0, 0, 1),
					ThisWeek:  5,
					Days: []DailyStats{
						{Date: startDate, Bookings: 2, Tasks: 1, Total: 3},
						{Date: startDate.AddDate(0, 0, 1), Bookings: 0, Tasks: 2, Total: 2},
					},
				},
			},
			want: "Date,Bookings,Tasks,SUM\n" +
				"01/01/2024,2,1,3\n" +
				"02/01/2024,0,2,2\n" +
				"Total,2,3,5\n",
		},
		{
			name: "RenderStats without days",
			args: args{overview: Overview{}},
			want: "Date,Bookings,Tasks,SUM\nTotal,0,0,0\n",
		},
	}
	for _, tt := range tests {
		t1.Run(tt.name, func(t1 *testing.T) {
			t := &CsvStatsRendererImpl{}
			got, err := t.RenderStats(tt.args.overview)
			require.NoError(t1, err)
			assert.Equal(t1, tt.want, got)
		})
	}
}
