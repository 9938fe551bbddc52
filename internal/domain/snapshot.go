package domain

import (
	"fmt"
	"time"
)

// Fixed series lengths of a dashboard snapshot.
const (
	DailyRangeDays = 7
	IntradayPoints = 12
	MonthlyPoints  = 6
)

type StatCard struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Alert struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Time  string `json:"time"`
}

type UsageRange string

const (
	UsageToday UsageRange = "today"
	UsageWeek  UsageRange = "week"
)

// UsageRanges lists the selectable ranges in display order.
var UsageRanges = []UsageRange{UsageToday, UsageWeek}

func ParseUsageRange(s string) (UsageRange, error) {
	switch UsageRange(s) {
	case UsageToday, UsageWeek:
		return UsageRange(s), nil
	default:
		return "", fmt.Errorf("unknown usage range %q", s)
	}
}

type Usage struct {
	Today int `json:"today"`
	Week  int `json:"week"`
}

// Percent returns the utilisation for r, 0 for an unknown range.
func (u Usage) Percent(r UsageRange) int {
	switch r {
	case UsageToday:
		return u.Today
	case UsageWeek:
		return u.Week
	default:
		return 0
	}
}

type Yesterday struct {
	ChargeCount int     `json:"chargeCount"`
	Trips       float64 `json:"trips"`
}

type DailyPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type WeeklyStat struct {
	Date          string  `json:"date"`
	Duration      float64 `json:"duration"`
	Interruptions int     `json:"interrupts"`
}

type MonthlyStat struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

type Patrol struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	People int    `json:"people"`
	Org    string `json:"org"`
}

// Snapshot is one complete fetch of dashboard data. It is replaced wholesale
// on refresh and never mutated in place.
type Snapshot struct {
	UpdatedAt      time.Time     `json:"updatedAt,omitzero"`
	Stats          []StatCard    `json:"stats"`
	Alerts         []Alert       `json:"alerts"`
	Usage          Usage         `json:"usage"`
	Yesterday      Yesterday     `json:"yesterday"`
	DailyRange     []DailyPoint  `json:"dailyRange"`
	RealtimeSeries []SeriesPoint `json:"realtimeSeries"`
	WeeklyStats    []WeeklyStat  `json:"weeklyStats"`
	MonthlyStats   []MonthlyStat `json:"monthlyStats"`
	Patrols        []Patrol      `json:"patrols"`
}

// EmptySnapshot returns the shape the dashboard holds while logged out.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Stats:          []StatCard{},
		Alerts:         []Alert{},
		DailyRange:     []DailyPoint{},
		RealtimeSeries: []SeriesPoint{},
		WeeklyStats:    []WeeklyStat{},
		MonthlyStats:   []MonthlyStat{},
		Patrols:        []Patrol{},
	}
}

// IsEmpty reports whether s carries no data at all.
func (s Snapshot) IsEmpty() bool {
	return s.UpdatedAt.IsZero() &&
		len(s.Stats) == 0 &&
		len(s.Alerts) == 0 &&
		s.Usage == (Usage{}) &&
		s.Yesterday == (Yesterday{}) &&
		len(s.DailyRange) == 0 &&
		len(s.RealtimeSeries) == 0 &&
		len(s.WeeklyStats) == 0 &&
		len(s.MonthlyStats) == 0 &&
		len(s.Patrols) == 0
}

// Validate checks the fixed series lengths.
func (s Snapshot) Validate() error {
	if len(s.DailyRange) != DailyRangeDays {
		return fmt.Errorf("daily range has %d points, want %d", len(s.DailyRange), DailyRangeDays)
	}
	if len(s.RealtimeSeries) != IntradayPoints {
		return fmt.Errorf("intraday series has %d points, want %d", len(s.RealtimeSeries), IntradayPoints)
	}
	if len(s.WeeklyStats) != DailyRangeDays {
		return fmt.Errorf("weekly stats have %d points, want %d", len(s.WeeklyStats), DailyRangeDays)
	}
	if len(s.MonthlyStats) != MonthlyPoints {
		return fmt.Errorf("monthly stats have %d points, want %d", len(s.MonthlyStats), MonthlyPoints)
	}
	return nil
}
