package chart

import "github.com/pscheid92/chargewatch/internal/domain"

const (
	colorAccent  = "#27f0ff"
	colorWarning = "#ff9a3c"
	colorAxis    = "#264d73"
	colorLabel   = "#7aa5d6"
	colorBase    = "#0c1f3f"
	colorSplit   = "rgba(39, 240, 255, 0.1)"
	colorTooltip = "rgba(13, 43, 79, 0.9)"
)

// Option is the subset of the ECharts option schema the dashboard uses. It
// marshals to JSON that echarts.setOption accepts as-is.
type Option struct {
	Grid    *Grid    `json:"grid,omitempty"`
	Legend  *Legend  `json:"legend,omitempty"`
	Tooltip Tooltip  `json:"tooltip"`
	XAxis   Axis     `json:"xAxis"`
	YAxis   []Axis   `json:"yAxis"`
	Series  []Series `json:"series"`
}

type Grid struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

type Legend struct {
	Data      []string  `json:"data"`
	TextStyle TextStyle `json:"textStyle"`
}

type TextStyle struct {
	Color string `json:"color"`
}

type Tooltip struct {
	Trigger         string       `json:"trigger"`
	AxisPointer     *AxisPointer `json:"axisPointer,omitempty"`
	BackgroundColor string       `json:"backgroundColor"`
	BorderWidth     int          `json:"borderWidth"`
	Padding         int          `json:"padding"`
	TextStyle       TextStyle    `json:"textStyle"`
}

type AxisPointer struct {
	Type string `json:"type"`
}

type Axis struct {
	Type      string     `json:"type"`
	Data      []string   `json:"data,omitempty"`
	AxisLine  *AxisLine  `json:"axisLine,omitempty"`
	AxisLabel TextStyle  `json:"axisLabel"`
	SplitLine *SplitLine `json:"splitLine,omitempty"`
}

type AxisLine struct {
	Show      *bool      `json:"show,omitempty"`
	LineStyle *LineStyle `json:"lineStyle,omitempty"`
}

type SplitLine struct {
	Show      *bool      `json:"show,omitempty"`
	LineStyle *LineStyle `json:"lineStyle,omitempty"`
}

type LineStyle struct {
	Color string `json:"color"`
}

type Series struct {
	Name       string     `json:"name,omitempty"`
	Type       string     `json:"type"`
	Smooth     bool       `json:"smooth,omitempty"`
	YAxisIndex int        `json:"yAxisIndex,omitempty"`
	Data       []float64  `json:"data"`
	Symbol     string     `json:"symbol,omitempty"`
	SymbolSize int        `json:"symbolSize,omitempty"`
	BarWidth   int        `json:"barWidth,omitempty"`
	LineStyle  *LineStyle `json:"lineStyle,omitempty"`
	AreaStyle  *Fill      `json:"areaStyle,omitempty"`
	ItemStyle  *ItemStyle `json:"itemStyle,omitempty"`
}

type Fill struct {
	Color Gradient `json:"color"`
}

type ItemStyle struct {
	Color       any    `json:"color"`
	BorderColor string `json:"borderColor,omitempty"`
}

// Gradient is the JSON form of echarts.graphic.LinearGradient.
type Gradient struct {
	Type       string      `json:"type"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	X2         float64     `json:"x2"`
	Y2         float64     `json:"y2"`
	ColorStops []ColorStop `json:"colorStops"`
}

type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

func vertical(from, to string) Gradient {
	return Gradient{
		Type: "linear", Y2: 1,
		ColorStops: []ColorStop{{Offset: 0, Color: from}, {Offset: 1, Color: to}},
	}
}

func hidden() *bool {
	f := false
	return &f
}

func tooltip() Tooltip {
	return Tooltip{
		Trigger:         "axis",
		BackgroundColor: colorTooltip,
		Padding:         10,
		TextStyle:       TextStyle{Color: colorAccent},
	}
}

func categoryAxis(labels []string) Axis {
	return Axis{
		Type:      "category",
		Data:      labels,
		AxisLine:  &AxisLine{LineStyle: &LineStyle{Color: colorAxis}},
		AxisLabel: TextStyle{Color: colorLabel},
	}
}

func valueAxis() Axis {
	return Axis{
		Type:      "value",
		AxisLabel: TextStyle{Color: colorLabel},
		SplitLine: &SplitLine{LineStyle: &LineStyle{Color: colorSplit}},
	}
}

func areaLine(name string, data []float64, symbolSize int) Series {
	return Series{
		Name:       name,
		Type:       "line",
		Smooth:     true,
		Data:       data,
		Symbol:     "circle",
		SymbolSize: symbolSize,
		LineStyle:  &LineStyle{Color: colorAccent},
		AreaStyle:  &Fill{Color: vertical("rgba(39, 240, 255, 0.35)", "rgba(39, 240, 255, 0)")},
	}
}

// Build returns the option for every chart key.
func Build(snap domain.Snapshot) map[Key]Option {
	return map[Key]Option{
		Daily:   DailyOption(snap.DailyRange),
		Power:   PowerOption(snap.RealtimeSeries),
		Weekly:  WeeklyOption(snap.WeeklyStats),
		Monthly: MonthlyOption(snap.MonthlyStats),
	}
}

func DailyOption(points []domain.DailyPoint) Option {
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Date
		values[i] = p.Value
	}

	y := valueAxis()
	y.AxisLine = &AxisLine{Show: hidden()}

	line := areaLine("Charging sessions", values, 8)
	line.ItemStyle = &ItemStyle{Color: colorAccent, BorderColor: colorBase}

	return Option{
		Grid:    &Grid{Left: 40, Right: 20, Top: 20, Bottom: 40},
		Tooltip: tooltip(),
		XAxis:   categoryAxis(labels),
		YAxis:   []Axis{y},
		Series:  []Series{line},
	}
}

func PowerOption(points []domain.SeriesPoint) Option {
	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Label
		values[i] = p.Value
	}

	y := valueAxis()
	y.AxisLine = &AxisLine{Show: hidden()}

	return Option{
		Grid:    &Grid{Left: 36, Right: 18, Top: 20, Bottom: 40},
		Tooltip: tooltip(),
		XAxis:   categoryAxis(labels),
		YAxis:   []Axis{y},
		Series:  []Series{areaLine("", values, 6)},
	}
}

// WeeklyOption plots charging duration as bars on the left axis and
// interruptions as a line on the right axis.
func WeeklyOption(stats []domain.WeeklyStat) Option {
	labels := make([]string, len(stats))
	durations := make([]float64, len(stats))
	interrupts := make([]float64, len(stats))
	for i, s := range stats {
		labels[i] = s.Date
		durations[i] = s.Duration
		interrupts[i] = float64(s.Interruptions)
	}

	tt := tooltip()
	tt.AxisPointer = &AxisPointer{Type: "shadow"}

	right := valueAxis()
	right.SplitLine = &SplitLine{Show: hidden()}

	return Option{
		Grid:    &Grid{Left: 40, Right: 24, Top: 40, Bottom: 40},
		Legend:  &Legend{Data: []string{"Total duration", "Interruptions"}, TextStyle: TextStyle{Color: colorLabel}},
		Tooltip: tt,
		XAxis:   categoryAxis(labels),
		YAxis:   []Axis{valueAxis(), right},
		Series: []Series{
			{
				Name:      "Total duration",
				Type:      "bar",
				Data:      durations,
				ItemStyle: &ItemStyle{Color: vertical(colorAccent, colorBase)},
			},
			{
				Name:       "Interruptions",
				Type:       "line",
				YAxisIndex: 1,
				Data:       interrupts,
				Symbol:     "circle",
				SymbolSize: 8,
				LineStyle:  &LineStyle{Color: colorWarning},
				ItemStyle:  &ItemStyle{Color: colorWarning, BorderColor: colorBase},
			},
		},
	}
}

func MonthlyOption(stats []domain.MonthlyStat) Option {
	labels := make([]string, len(stats))
	values := make([]float64, len(stats))
	for i, s := range stats {
		labels[i] = s.Month
		values[i] = s.Value
	}

	return Option{
		Grid:    &Grid{Left: 40, Right: 20, Top: 20, Bottom: 40},
		Tooltip: tooltip(),
		XAxis:   categoryAxis(labels),
		YAxis:   []Axis{valueAxis()},
		Series: []Series{{
			Type:      "bar",
			Data:      values,
			BarWidth:  22,
			ItemStyle: &ItemStyle{Color: vertical(colorAccent, colorBase)},
		}},
	}
}
