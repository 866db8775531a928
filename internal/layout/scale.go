// Package layout derives the visible window of a timeline and maps dates to pixels.
//
// Every rendered element (axis columns, grid lines, task bars, the today marker)
// goes through the same mapping so they stay pixel aligned.
package layout

import (
	"math"

	"github.com/fentz26/laneplan/internal/models"
)

const (
	// WeekDayWidthPx is the width of one calendar day at week zoom.
	WeekDayWidthPx = 80
	// MonthDayWidthPx is the width of one calendar day at month zoom.
	MonthDayWidthPx = 20
	// BarInsetPx is the visual gutter subtracted from bar widths so adjacent bars don't merge.
	BarInsetPx = 2

	weekPaddingDays  = 7
	monthPaddingDays = 14
	weekEmptySpan    = 14
	monthEmptySpan   = 60
)

// DayWidth returns the pixel width of one day at the given zoom.
func DayWidth(zoom models.Zoom) int {
	if zoom == models.ZoomMonth {
		return MonthDayWidthPx
	}
	return WeekDayWidthPx
}

func paddingDays(zoom models.Zoom) int {
	if zoom == models.ZoomMonth {
		return monthPaddingDays
	}
	return weekPaddingDays
}

func emptySpanDays(zoom models.Zoom) int {
	if zoom == models.ZoomMonth {
		return monthEmptySpan
	}
	return weekEmptySpan
}

// ResolveWindow derives the visible window from the task set and zoom level.
// With no tasks the window starts on the Monday of today's week. Otherwise it
// spans the earliest start to the latest end, padded on both sides.
// today is a parameter so callers outside an interactive session can pin it.
func ResolveWindow(tasks []models.Task, zoom models.Zoom, today models.Date) models.Scale {
	dayWidth := DayWidth(zoom)

	var start, end models.Date
	if len(tasks) == 0 {
		start = today.StartOfWeek()
		end = start.AddDays(emptySpanDays(zoom))
	} else {
		minStart := tasks[0].Start
		maxEnd := models.MaxDate(tasks[0].Start, tasks[0].End)
		for _, t := range tasks[1:] {
			minStart = models.MinDate(minStart, t.Start)
			maxEnd = models.MaxDate(maxEnd, models.MaxDate(t.Start, t.End))
		}
		pad := paddingDays(zoom)
		start = minStart.AddDays(-pad)
		end = maxEnd.AddDays(pad)
	}

	days := end.DaysSince(start) + 1
	return models.Scale{
		WindowStart:  start,
		WindowEnd:    end,
		DayWidthPx:   dayWidth,
		TotalWidthPx: days * dayWidth,
	}
}

// DateToOffsetPx maps a date to its left edge. Dates before the window clamp to 0.
func DateToOffsetPx(date, windowStart models.Date, dayWidthPx int) int {
	days := date.DaysSince(windowStart)
	if days < 0 {
		days = 0
	}
	return days * dayWidthPx
}

// OffsetToDate maps a pixel offset back to the day whose column contains it.
// It is the inverse of DateToOffsetPx for every date inside the window.
func OffsetToDate(offsetPx int, windowStart models.Date, dayWidthPx int) models.Date {
	if dayWidthPx <= 0 || offsetPx < 0 {
		return windowStart
	}
	return windowStart.AddDays(offsetPx / dayWidthPx)
}

// Geometry is the horizontal placement of a task bar.
type Geometry struct {
	LeftPx  int `json:"leftPx"`
	WidthPx int `json:"widthPx"`
}

// RightPx is the exclusive right edge of the bar.
func (g Geometry) RightPx() int { return g.LeftPx + g.WidthPx }

// BarGeometry places a task bar. Width never drops below one day; the inset only
// affects rendering, not the date math.
func BarGeometry(task models.Task, windowStart models.Date, dayWidthPx int) Geometry {
	width := task.DurationDays()*dayWidthPx - BarInsetPx
	if width < dayWidthPx {
		width = dayWidthPx
	}
	return Geometry{
		LeftPx:  DateToOffsetPx(task.Start, windowStart, dayWidthPx),
		WidthPx: width,
	}
}

// PixelDeltaToDayDelta converts pointer travel into whole days, rounding to the
// nearest day with halves going toward +inf.
func PixelDeltaToDayDelta(deltaPx float64, dayWidthPx int) int {
	if dayWidthPx <= 0 {
		return 0
	}
	return int(math.Floor(deltaPx/float64(dayWidthPx) + 0.5))
}

// TodayMarker returns the offset of today's column and whether it should be drawn.
// The marker is suppressed when today falls outside the window.
func TodayMarker(today models.Date, scale models.Scale) (int, bool) {
	if !scale.Contains(today) {
		return 0, false
	}
	return DateToOffsetPx(today, scale.WindowStart, scale.DayWidthPx), true
}
