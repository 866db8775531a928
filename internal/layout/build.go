package layout

import (
	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/overlap"
)

// Bar is a rendered task with its geometry and conflict state.
type Bar struct {
	Task     models.Task `json:"task"`
	Geometry Geometry    `json:"geometry"`
	Conflict bool        `json:"conflict"`
}

// Row is one lane and its bars, in document order.
type Row struct {
	Lane models.Lane `json:"lane"`
	Bars []Bar       `json:"bars"`
}

// Today is the today marker.
type Today struct {
	Date     models.Date `json:"date"`
	OffsetPx int         `json:"offsetPx"`
	Visible  bool        `json:"visible"`
}

// Layout is one full render pass over a document.
type Layout struct {
	Zoom    models.Zoom  `json:"zoom"`
	Scale   models.Scale `json:"scale"`
	Columns []Column     `json:"columns"`
	Rows    []Row        `json:"rows"`
	Today   Today        `json:"today"`
	// Dangling holds tasks whose lane does not exist. They are not rendered.
	Dangling []models.Task `json:"dangling,omitempty"`
}

// Build runs a render pass with the window resolved from doc itself.
func Build(doc models.Document, zoom models.Zoom, today models.Date) Layout {
	return BuildOnScale(doc, ResolveWindow(doc.Tasks, zoom, today), zoom, today)
}

// BuildPreview renders preview against the window of committed. The axis, grid
// and today marker follow the committed document; bars and conflicts follow the
// preview, so an in-flight drag moves its bar without shifting the window.
func BuildPreview(committed, preview models.Document, zoom models.Zoom, today models.Date) Layout {
	return BuildOnScale(preview, ResolveWindow(committed.Tasks, zoom, today), zoom, today)
}

// BuildOnScale runs a render pass over doc against a fixed scale. Conflicts are
// computed fresh from doc.
func BuildOnScale(doc models.Document, scale models.Scale, zoom models.Zoom, today models.Date) Layout {
	out := Layout{
		Zoom:    zoom,
		Scale:   scale,
		Columns: Columns(scale, zoom),
		Rows:    make([]Row, 0, len(doc.Lanes)),
	}

	known := make(map[string]bool, len(doc.Lanes))
	for _, lane := range doc.Lanes {
		known[lane.ID] = true
		laneTasks := doc.TasksInLane(lane.ID)
		row := Row{Lane: lane, Bars: make([]Bar, 0, len(laneTasks))}
		for _, t := range laneTasks {
			row.Bars = append(row.Bars, Bar{
				Task:     t,
				Geometry: BarGeometry(t, scale.WindowStart, scale.DayWidthPx),
				Conflict: overlap.HasConflict(t, laneTasks),
			})
		}
		out.Rows = append(out.Rows, row)
	}
	for _, t := range doc.Tasks {
		if !known[t.LaneID] {
			out.Dangling = append(out.Dangling, t)
		}
	}

	offset, visible := TodayMarker(today, scale)
	out.Today = Today{Date: today, OffsetPx: offset, Visible: visible}
	return out
}

// Bar returns the rendered bar for a task id.
func (l Layout) Bar(taskID string) (Bar, int, bool) {
	for i, row := range l.Rows {
		for _, b := range row.Bars {
			if b.Task.ID == taskID {
				return b, i, true
			}
		}
	}
	return Bar{}, -1, false
}
