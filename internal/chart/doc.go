// Package chart turns dashboard snapshots into ECharts options and manages the
// lifecycle of the chart handles they are drawn on.
package chart
