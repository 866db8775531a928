package layout

import "github.com/fentz26/laneplan/internal/models"

// Column is one axis header cell and the grid line at its left edge.
type Column struct {
	Start    models.Date `json:"start"`
	LeftPx   int         `json:"leftPx"`
	WidthPx  int         `json:"widthPx"`
	Label    string      `json:"label"`
	SubLabel string      `json:"subLabel,omitempty"`
}

// Columns lists axis columns: one per day at week zoom, one per Monday-started
// week at month zoom. The first week column is clipped at the window start.
func Columns(scale models.Scale, zoom models.Zoom) []Column {
	if scale.DayWidthPx <= 0 || scale.WindowEnd.Before(scale.WindowStart) {
		return nil
	}
	if zoom == models.ZoomMonth {
		return weekColumns(scale)
	}
	return dayColumns(scale)
}

func dayColumns(scale models.Scale) []Column {
	cols := make([]Column, 0, scale.Days())
	for d := scale.WindowStart; !d.After(scale.WindowEnd); d = d.AddDays(1) {
		cols = append(cols, Column{
			Start:    d,
			LeftPx:   DateToOffsetPx(d, scale.WindowStart, scale.DayWidthPx),
			WidthPx:  scale.DayWidthPx,
			Label:    d.Format("Mon"),
			SubLabel: d.Format("Jan 2"),
		})
	}
	return cols
}

func weekColumns(scale models.Scale) []Column {
	var cols []Column
	for w := scale.WindowStart.StartOfWeek(); !w.After(scale.WindowEnd); w = w.AddDays(7) {
		left := DateToOffsetPx(w, scale.WindowStart, scale.DayWidthPx)
		right := DateToOffsetPx(w.AddDays(7), scale.WindowStart, scale.DayWidthPx)
		if right > scale.TotalWidthPx {
			right = scale.TotalWidthPx
		}
		cols = append(cols, Column{
			Start:   w,
			LeftPx:  left,
			WidthPx: right - left,
			Label:   w.Format("Jan 2"),
		})
	}
	return cols
}
