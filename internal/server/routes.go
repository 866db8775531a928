package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/overlap"
	"github.com/fentz26/laneplan/internal/timeline"
)

type taskPath struct {
	ID string `path:"id"`
}

type lanePath struct {
	ID string `path:"id"`
}

func registerHealth(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body HealthResponse `json:"body"`
	}, error) {
		resp := HealthResponse{OK: true, DB: "ok", Version: Version, Time: time.Now().UTC().Format(time.RFC3339)}
		if err := a.DB.Ping(ctx); err != nil {
			resp.OK = false
			resp.DB = err.Error()
		}
		return &struct {
			Body HealthResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func registerDocument(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "get-document",
		Method:      http.MethodGet,
		Path:        "/document",
		Summary:     "Current timeline document",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body DocumentResponse `json:"body"`
	}, error) {
		return &struct {
			Body DocumentResponse `json:"body"`
		}{Body: documentResponse(a.Timeline.Snapshot())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-layout",
		Method:      http.MethodGet,
		Path:        "/layout",
		Summary:     "Render pass: window, axis columns, bar geometry and conflicts",
	}, func(ctx context.Context, input *struct {
		Zoom string `query:"zoom" enum:"week,month" default:"week"`
	}) (*struct {
		Body LayoutResponse `json:"body"`
	}, error) {
		zoom, err := models.ParseZoom(input.Zoom)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "", err.Error())
		}
		return &struct {
			Body LayoutResponse `json:"body"`
		}{Body: layoutResponse(a.Layout(zoom))}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-conflicts",
		Method:      http.MethodGet,
		Path:        "/conflicts",
		Summary:     "Overlapping task pairs per lane",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ConflictResponse `json:"body"`
	}, error) {
		return &struct {
			Body []ConflictResponse `json:"body"`
		}{Body: conflictResponses(overlap.Pairs(a.Timeline.Snapshot().Tasks))}, nil
	})
}

func registerTasks(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		draft, err := a.Timeline.NewDraft(a.Today())
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.ID != nil {
			draft.ID = *input.Body.ID
		}
		patch, err := createPatch(input.Body)
		if err != nil {
			return nil, err
		}
		task, err := a.Timeline.CreateTask(patch.Apply(draft))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(task)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *taskPath) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		task, ok := a.Timeline.Task(input.ID)
		if !ok {
			return nil, handleError(timeline.ErrTaskNotFound)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(task)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Update task fields",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body UpdateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		patch, err := updatePatch(input.Body)
		if err != nil {
			return nil, err
		}
		task, err := a.Timeline.UpdateTask(input.ID, patch)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(task)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/tasks/{id}",
		Summary:       "Delete task",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *taskPath) (*struct{}, error) {
		if err := a.Timeline.DeleteTask(input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/move",
		Summary:     "Move task to another lane, keeping its dates",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string          `path:"id"`
		Body MoveTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		if _, err := a.Controller.AcceptDrop(input.Body.LaneID, input.ID); err != nil {
			return nil, handleError(err)
		}
		task, _ := a.Timeline.Task(input.ID)
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(task)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "nudge-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/nudge",
		Summary:     "Shift both task dates by a number of days",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string           `path:"id"`
		Body NudgeTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		task, err := a.Controller.Nudge(input.ID, input.Body.Days)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(task)}, nil
	})
}

func registerLanes(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "list-lanes",
		Method:      http.MethodGet,
		Path:        "/lanes",
		Summary:     "List lanes",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []LaneResponse `json:"body"`
	}, error) {
		lanes := a.Timeline.Lanes()
		out := make([]LaneResponse, 0, len(lanes))
		for _, l := range lanes {
			out = append(out, laneResponse(l))
		}
		return &struct {
			Body []LaneResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-lane",
		Method:        http.MethodPost,
		Path:          "/lanes",
		Summary:       "Add lane",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body CreateLaneRequest `json:"body"`
	}) (*struct {
		Body LaneResponse `json:"body"`
	}, error) {
		lane, err := a.Timeline.AddLane(input.Body.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body LaneResponse `json:"body"`
		}{Body: laneResponse(lane)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "rename-lane",
		Method:      http.MethodPatch,
		Path:        "/lanes/{id}",
		Summary:     "Rename lane",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body CreateLaneRequest `json:"body"`
	}) (*struct {
		Body LaneResponse `json:"body"`
	}, error) {
		if err := a.Timeline.RenameLane(input.ID, input.Body.Name); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body LaneResponse `json:"body"`
		}{Body: LaneResponse{ID: input.ID, Name: input.Body.Name}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-lane",
		Method:        http.MethodDelete,
		Path:          "/lanes/{id}",
		Summary:       "Delete an empty lane",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *lanePath) (*struct{}, error) {
		if err := a.Timeline.DeleteLane(input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerJournal(api huma.API, a *app.App) {
	huma.Register(api, huma.Operation{
		OperationID: "list-edits",
		Method:      http.MethodGet,
		Path:        "/edits",
		Summary:     "Edit journal, newest first",
	}, func(ctx context.Context, input *struct {
		TaskID string `query:"task"`
		Limit  int    `query:"limit" minimum:"0" maximum:"1000"`
	}) (*struct {
		Body []EditResponse `json:"body"`
	}, error) {
		entries, err := a.DB.ListEdits(input.TaskID, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []EditResponse `json:"body"`
		}{Body: editResponses(entries)}, nil
	})
}

func parseDateField(name string, v *string) (*models.Date, error) {
	if v == nil {
		return nil, nil
	}
	d, err := models.ParseDate(*v)
	if err != nil {
		return nil, newAPIError(http.StatusBadRequest, "", name+": "+err.Error())
	}
	return &d, nil
}

func createPatch(req CreateTaskRequest) (timeline.TaskPatch, error) {
	start, err := parseDateField("start", req.Start)
	if err != nil {
		return timeline.TaskPatch{}, err
	}
	end, err := parseDateField("end", req.End)
	if err != nil {
		return timeline.TaskPatch{}, err
	}
	p := timeline.TaskPatch{
		Name:     &req.Name,
		LaneID:   req.LaneID,
		Start:    start,
		End:      end,
		Assignee: req.Assignee,
	}
	if req.Deps != nil {
		p.Deps = &req.Deps
	}
	return p, nil
}

func updatePatch(req UpdateTaskRequest) (timeline.TaskPatch, error) {
	start, err := parseDateField("start", req.Start)
	if err != nil {
		return timeline.TaskPatch{}, err
	}
	end, err := parseDateField("end", req.End)
	if err != nil {
		return timeline.TaskPatch{}, err
	}
	return timeline.TaskPatch{
		Name:     req.Name,
		LaneID:   req.LaneID,
		Start:    start,
		End:      end,
		Assignee: req.Assignee,
		Deps:     req.Deps,
	}, nil
}
