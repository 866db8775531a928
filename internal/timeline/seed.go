package timeline

import "github.com/fentz26/laneplan/internal/models"

// Seed returns the starter document used when nothing has been saved yet.
// Dates are laid out around the Monday of today's week.
func Seed(today models.Date) models.Document {
	monday := today.StartOfWeek()
	at := func(offset int) models.Date { return monday.AddDays(offset) }

	return models.Document{
		Lanes: []models.Lane{
			{ID: "lane-eng", Name: "Engineering"},
			{ID: "lane-design", Name: "Design"},
			{ID: "lane-mkt", Name: "Marketing"},
		},
		Tasks: []models.Task{
			{ID: "t1", Name: "API design", LaneID: "lane-eng", Start: at(0), End: at(3), Assignee: "Ana", Deps: []string{}},
			{ID: "t2", Name: "Backend build", LaneID: "lane-eng", Start: at(3), End: at(10), Assignee: "Ben", Deps: []string{"t1"}},
			{ID: "t3", Name: "Load testing", LaneID: "lane-eng", Start: at(8), End: at(12), Assignee: "", Deps: []string{"t2"}},
			{ID: "t4", Name: "Wireframes", LaneID: "lane-design", Start: at(1), End: at(4), Assignee: "Cleo", Deps: []string{}},
			{ID: "t5", Name: "Visual design", LaneID: "lane-design", Start: at(5), End: at(11), Assignee: "Cleo", Deps: []string{"t4"}},
			{ID: "t6", Name: "Launch plan", LaneID: "lane-mkt", Start: at(7), End: at(14), Assignee: "Dev", Deps: []string{}},
		},
	}
}
