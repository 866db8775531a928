package server

import (
	"time"

	"github.com/fentz26/laneplan/internal/layout"
	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/overlap"
)

// Request payloads

type CreateTaskRequest struct {
	ID       *string  `json:"id,omitempty"`
	Name     string   `json:"name" minLength:"1"`
	LaneID   *string  `json:"laneId,omitempty"`
	Start    *string  `json:"start,omitempty" format:"date"`
	End      *string  `json:"end,omitempty" format:"date"`
	Assignee *string  `json:"assignee,omitempty"`
	Deps     []string `json:"deps,omitempty"`
}

type UpdateTaskRequest struct {
	Name     *string   `json:"name,omitempty"`
	LaneID   *string   `json:"laneId,omitempty"`
	Start    *string   `json:"start,omitempty" format:"date"`
	End      *string   `json:"end,omitempty" format:"date"`
	Assignee *string   `json:"assignee,omitempty"`
	Deps     *[]string `json:"deps,omitempty"`
}

type MoveTaskRequest struct {
	LaneID string `json:"laneId" minLength:"1"`
}

type NudgeTaskRequest struct {
	Days int `json:"days"`
}

type CreateLaneRequest struct {
	Name string `json:"name" minLength:"1"`
}

// Responses

type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

type LaneResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TaskResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	LaneID   string   `json:"laneId"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Assignee string   `json:"assignee"`
	Deps     []string `json:"deps"`
}

type DocumentResponse struct {
	Lanes []LaneResponse `json:"lanes"`
	Tasks []TaskResponse `json:"tasks"`
}

type GeometryResponse struct {
	LeftPx  int `json:"leftPx"`
	WidthPx int `json:"widthPx"`
}

type BarResponse struct {
	Task     TaskResponse     `json:"task"`
	Geometry GeometryResponse `json:"geometry"`
	Conflict bool             `json:"conflict"`
}

type RowResponse struct {
	Lane LaneResponse  `json:"lane"`
	Bars []BarResponse `json:"bars"`
}

type ColumnResponse struct {
	Start    string `json:"start"`
	LeftPx   int    `json:"leftPx"`
	WidthPx  int    `json:"widthPx"`
	Label    string `json:"label"`
	SubLabel string `json:"subLabel,omitempty"`
}

type TodayResponse struct {
	Date     string `json:"date"`
	OffsetPx int    `json:"offsetPx"`
	Visible  bool   `json:"visible"`
}

type LayoutResponse struct {
	Zoom         string           `json:"zoom"`
	WindowStart  string           `json:"windowStart"`
	WindowEnd    string           `json:"windowEnd"`
	DayWidthPx   int              `json:"dayWidthPx"`
	TotalWidthPx int              `json:"totalWidthPx"`
	Columns      []ColumnResponse `json:"columns"`
	Rows         []RowResponse    `json:"rows"`
	Today        TodayResponse    `json:"today"`
	Dangling     []TaskResponse   `json:"dangling"`
}

type ConflictResponse struct {
	LaneID string `json:"laneId"`
	TaskA  string `json:"taskA"`
	TaskB  string `json:"taskB"`
}

type EditResponse struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	InputsHash string `json:"inputsHash"`
	Outcome    string `json:"outcome"`
	TaskID     string `json:"taskId,omitempty"`
	LaneID     string `json:"laneId,omitempty"`
	Timestamp  string `json:"timestamp"`
}

func laneResponse(l models.Lane) LaneResponse {
	return LaneResponse{ID: l.ID, Name: l.Name}
}

func taskResponse(t models.Task) TaskResponse {
	deps := t.Deps
	if deps == nil {
		deps = []string{}
	}
	return TaskResponse{
		ID:       t.ID,
		Name:     t.Name,
		LaneID:   t.LaneID,
		Start:    t.Start.String(),
		End:      t.End.String(),
		Assignee: t.Assignee,
		Deps:     deps,
	}
}

func mapTasks(tasks []models.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse(t))
	}
	return out
}

func documentResponse(doc models.Document) DocumentResponse {
	lanes := make([]LaneResponse, 0, len(doc.Lanes))
	for _, l := range doc.Lanes {
		lanes = append(lanes, laneResponse(l))
	}
	return DocumentResponse{Lanes: lanes, Tasks: mapTasks(doc.Tasks)}
}

func layoutResponse(l layout.Layout) LayoutResponse {
	cols := make([]ColumnResponse, 0, len(l.Columns))
	for _, c := range l.Columns {
		cols = append(cols, ColumnResponse{
			Start:    c.Start.String(),
			LeftPx:   c.LeftPx,
			WidthPx:  c.WidthPx,
			Label:    c.Label,
			SubLabel: c.SubLabel,
		})
	}
	rows := make([]RowResponse, 0, len(l.Rows))
	for _, r := range l.Rows {
		bars := make([]BarResponse, 0, len(r.Bars))
		for _, b := range r.Bars {
			bars = append(bars, BarResponse{
				Task:     taskResponse(b.Task),
				Geometry: GeometryResponse{LeftPx: b.Geometry.LeftPx, WidthPx: b.Geometry.WidthPx},
				Conflict: b.Conflict,
			})
		}
		rows = append(rows, RowResponse{Lane: laneResponse(r.Lane), Bars: bars})
	}
	return LayoutResponse{
		Zoom:         string(l.Zoom),
		WindowStart:  l.Scale.WindowStart.String(),
		WindowEnd:    l.Scale.WindowEnd.String(),
		DayWidthPx:   l.Scale.DayWidthPx,
		TotalWidthPx: l.Scale.TotalWidthPx,
		Columns:      cols,
		Rows:         rows,
		Today:        TodayResponse{Date: l.Today.Date.String(), OffsetPx: l.Today.OffsetPx, Visible: l.Today.Visible},
		Dangling:     mapTasks(l.Dangling),
	}
}

func conflictResponses(pairs []overlap.Pair) []ConflictResponse {
	out := make([]ConflictResponse, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, ConflictResponse{LaneID: p.LaneID, TaskA: p.A.ID, TaskB: p.B.ID})
	}
	return out
}

func editResponses(entries []models.EditEntry) []EditResponse {
	out := make([]EditResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, EditResponse{
			ID:         e.ID,
			Action:     e.Action,
			InputsHash: e.InputsHash,
			Outcome:    e.Outcome,
			TaskID:     e.TaskID,
			LaneID:     e.LaneID,
			Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return out
}
