package mockapi

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/pscheid92/chargewatch/internal/domain"
)

const dateLayout = "2006-01-02"

// Generate builds a snapshot around now. Figures are drawn from rng within
// fixed ranges; cards, alerts and patrols are fixed.
func Generate(now time.Time, rng *rand.Rand) domain.Snapshot {
	today := now.Format(dateLayout)

	daily := make([]domain.DailyPoint, domain.DailyRangeDays)
	for i := range daily {
		day := now.AddDate(0, 0, -(domain.DailyRangeDays - 1 - i))
		daily[i] = domain.DailyPoint{Date: day.Format(dateLayout), Value: between(rng, 0.3, 1.2, 2)}
	}

	realtime := make([]domain.SeriesPoint, domain.IntradayPoints)
	for i := range realtime {
		realtime[i] = domain.SeriesPoint{Label: fmt.Sprintf("%d:00", 8+i), Value: between(rng, 45, 98, 0)}
	}

	weekly := make([]domain.WeeklyStat, len(daily))
	for i, d := range daily {
		weekly[i] = domain.WeeklyStat{
			Date:          d.Date,
			Duration:      between(rng, 6, 15, 1),
			Interruptions: int(between(rng, 0, 4, 0)),
		}
	}

	monthly := make([]domain.MonthlyStat, domain.MonthlyPoints)
	for i := range monthly {
		monthly[i] = domain.MonthlyStat{
			Month: fmt.Sprintf("%d-%02d", now.Year(), i+1),
			Value: between(rng, 80, 170, 1),
		}
	}

	return domain.Snapshot{
		UpdatedAt: now,
		Stats: []domain.StatCard{
			{ID: "daily", Label: "Daily chargers (units)", Value: 4},
			{ID: "online", Label: "Online now (units)", Value: 4},
			{ID: "inUse", Label: "Charging now (units)", Value: 2},
			{ID: "fault", Label: "Faulty chargers (units)", Value: 0},
			{ID: "mileage", Label: "Total mileage (km)", Value: 220},
			{ID: "todayPower", Label: "Live charging energy (kWh)", Value: 5.13},
			{ID: "monthPower", Label: "Month-to-date energy (kWh)", Value: 5.13},
		},
		Alerts: []domain.Alert{
			{ID: "alert-1", Title: "Charger #2 raised a leakage alarm, dispatch staff immediately", Time: today + " 13:11:13"},
			{ID: "alert-2", Title: "Charger #3 reports abnormal current, check the wiring", Time: today + " 11:40:17"},
			{ID: "alert-3", Title: "Charger #5 lost communication, waiting for recovery", Time: today + " 09:25:18"},
		},
		Usage: domain.Usage{
			Today: int(between(rng, 68, 96, 0)),
			Week:  int(between(rng, 70, 92, 0)),
		},
		Yesterday:      domain.Yesterday{ChargeCount: 126, Trips: 0.7},
		DailyRange:     daily,
		RealtimeSeries: realtime,
		WeeklyStats:    weekly,
		MonthlyStats:   monthly,
		Patrols: []domain.Patrol{
			{Date: now.AddDate(0, 0, -1).Format(dateLayout), Count: 1, People: 1, Org: "Operations"},
			{Date: now.AddDate(0, 0, -2).Format(dateLayout), Count: 1, People: 2, Org: "Maintenance"},
			{Date: "2021-06-04", Count: 1, People: 3, Org: "Maintenance"},
			{Date: "2021-06-16", Count: 1, People: 2, Org: "Third-party inspector"},
		},
	}
}

// between draws uniformly from [lo, hi) and rounds to digits decimals.
func between(rng *rand.Rand, lo, hi float64, digits int) float64 {
	v := rng.Float64()*(hi-lo) + lo
	scale := math.Pow10(digits)
	return math.Round(v*scale) / scale
}
