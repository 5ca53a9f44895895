package tracking

import (
	"fmt"
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/domain/timer"
	"garmentflow/persistence"
	"garmentflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
)

type StepStatus string

const (
	StepCompleted = StepStatus("completed")
	StepCurrent   = StepStatus("current")
	StepPending   = StepStatus("pending")
)

var GetTrackingFunc = GetTracking

type Summary struct {
	Folio       string                  `json:"folio"`
	Status      domain.RepositionStatus `json:"status"`
	CurrentArea domain.Area             `json:"currentArea"`
	Progress    int                     `json:"progress"`
}

type Step struct {
	ID            int                  `json:"id"`
	Area          domain.TrackingStage `json:"area"`
	Status        StepStatus           `json:"status"`
	Timestamp     *time.Time           `json:"timestamp,omitempty"`
	User          string               `json:"user,omitempty"`
	TimeSpent     string               `json:"timeSpent,omitempty"`
	TimeInMinutes int                  `json:"timeInMinutes"`
}

type TotalTime struct {
	Formatted string `json:"formatted"`
	Minutes   int    `json:"minutes"`
}

type Tracking struct {
	Reposition  Summary                      `json:"reposition"`
	Steps       []Step                       `json:"steps"`
	History     []domain.RepositionHistory   `json:"history"`
	TotalTime   TotalTime                    `json:"totalTime"`
	AreaTimes   map[domain.TrackingStage]int `json:"areaTimes"`
	GeneratedAt time.Time                    `json:"generatedAt"`
}

// FormatDuration renders minutes as "{h}h {m}m", or "{m}m" below one hour.
func FormatDuration(minutes int) string {
	if h := minutes / 60; h > 0 {
		return fmt.Sprintf("%dh %dm", h, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Project builds the tracking view of a reposition. history must be in ascending order.
// It reads nothing but its arguments.
func Project(r *domain.Reposition, history []domain.RepositionHistory, timers []domain.RepositionTimer, now time.Time) *Tracking {
	current := domain.StageIndexOf(r.CurrentArea)
	completed := r.Status == domain.StatusCompletado

	areaTimes := map[domain.TrackingStage]int{}
	for _, stage := range domain.TrackingStages {
		areaTimes[stage] = 0
	}
	manual := map[domain.TrackingStage]bool{}
	for _, t := range timers {
		stage := domain.TrackingStage(t.Area)
		if domain.StageIndexOf(t.Area) < 0 || !t.HasManualSpan() {
			continue
		}
		minutes, err := timer.SpanMinutes(t.ManualStartTime, t.ManualEndTime)
		if err != nil {
			continue
		}
		// the latest manual entry of a stage wins
		areaTimes[stage] = minutes
		manual[stage] = true
	}

	steps := make([]Step, 0, len(domain.TrackingStages))
	completedSteps := 0
	for i, stage := range domain.TrackingStages {
		step := Step{ID: i + 1, Area: stage, Status: StepPending}
		if i < current || completed {
			step.Status = StepCompleted
			completedSteps++
		} else if i == current {
			step.Status = StepCurrent
		}
		if manual[stage] {
			step.TimeInMinutes = areaTimes[stage]
			step.TimeSpent = FormatDuration(step.TimeInMinutes)
		}
		if h := lastArrival(history, stage); h != nil {
			ts := h.CreatedAt
			step.Timestamp = &ts
			step.User = h.UserName
		}
		steps = append(steps, step)
	}

	total := 0
	for _, minutes := range areaTimes {
		total += minutes
	}
	if history == nil {
		history = []domain.RepositionHistory{}
	}

	return &Tracking{
		Reposition: Summary{
			Folio:       r.Folio,
			Status:      r.Status,
			CurrentArea: r.CurrentArea,
			Progress:    roundPercent(completedSteps, len(domain.TrackingStages)),
		},
		Steps:       steps,
		History:     history,
		TotalTime:   TotalTime{Formatted: FormatDuration(total), Minutes: total},
		AreaTimes:   areaTimes,
		GeneratedAt: now,
	}
}

// lastArrival finds the most recent entry moving the reposition into the stage. The first
// stage is entered on creation.
func lastArrival(history []domain.RepositionHistory, stage domain.TrackingStage) *domain.RepositionHistory {
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		if h.ToArea == stage.Area() ||
			(stage == domain.TrackingStages[0] && h.Action == domain.ActionCreated) {
			return &history[i]
		}
	}
	return nil
}

func roundPercent(part, whole int) int {
	return (200*part + whole) / (2 * whole)
}

func GetTracking(id types.ID, s *session.Session) (*Tracking, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	r, err := reposition.FindReposition(db, id)
	if err != nil {
		return nil, err
	}
	history, err := reposition.LoadHistory(db, id)
	if err != nil {
		return nil, err
	}
	timers, err := timer.LoadTimers(db, id)
	if err != nil {
		return nil, err
	}
	return Project(r, history, timers, time.Now()), nil
}
