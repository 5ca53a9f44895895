package reposition

import (
	"fmt"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/event"
	"garmentflow/notification"
	"garmentflow/persistence"
	"garmentflow/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const MinDeletionReasonLength = 10

var (
	ApproveRepositionFunc  = ApproveReposition
	CompleteRepositionFunc = CompleteReposition
	DeleteRepositionFunc   = DeleteReposition
)

type ApprovalRequest struct {
	Action domain.RepositionStatus `json:"action"`
	Notes  string                  `json:"notes"`
}

type CompletionRequest struct {
	Notes string `json:"notes"`
}

type DeletionRequest struct {
	Reason string `json:"reason"`
}

type CompletionOutcome string

const (
	OutcomeCompleted         = CompletionOutcome("completed")
	OutcomeApprovalRequested = CompletionOutcome("approval_requested")
)

type CompletionResult struct {
	Outcome    CompletionOutcome  `json:"outcome"`
	Reposition *domain.Reposition `json:"reposition"`
}

// ApproveReposition records the decision of operaciones, admin or envios. The current area is
// never touched.
func ApproveReposition(id types.ID, req ApprovalRequest, s *session.Session) (*domain.Reposition, error) {
	if req.Action != domain.StatusAprobado && req.Action != domain.StatusRechazado {
		return nil, bizerror.BadParam("action must be one of aprobado, rechazado")
	}

	var r *domain.Reposition
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		rep, err := findReposition(tx, id)
		if err != nil {
			return err
		}
		if !canTransit(rep.Status, req.Action) {
			return bizerror.InvalidState(fmt.Sprintf("reposition %s is %s and can not be %s", rep.Folio, rep.Status, req.Action))
		}

		now := time.Now()
		oldStatus := rep.Status
		if err := updateReposition(tx, rep, map[string]interface{}{
			"status": req.Action, "approved_by": s.Identity.ID, "approved_at": now,
		}); err != nil {
			return err
		}

		action, tplType, verb := domain.ActionApproved, notification.TypeRepositionApproved, "aprobada"
		if req.Action == domain.StatusRechazado {
			action, tplType, verb = domain.ActionRejected, notification.TypeRepositionRejected, "rechazada"
		}
		description := fmt.Sprintf("Reposition %s", req.Action)
		if notes := strings.TrimSpace(req.Notes); notes != "" {
			description += ": " + notes
		}
		if err := appendHistory(tx, rep, action, description, "", "", &s.Identity, now); err != nil {
			return err
		}

		ev = event.NewRepositionEvent(rep, event.EventCategoryPropertyUpdated, action, &s.Identity, now,
			event.UpdatedProperty{PropertyName: "status", OldValue: string(oldStatus), NewValue: string(rep.Status)})
		if err := notification.Notify(tx, ev, rep.ID, []types.ID{rep.CreatedBy}, notification.Template{
			Type:    tplType,
			Title:   "Solicitud " + verb,
			Message: fmt.Sprintf("La solicitud %s fue %s por %s", rep.Folio, verb, s.Identity.DisplayName()),
		}); err != nil {
			return err
		}
		r = rep
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logrus.WithFields(logrus.Fields{"repositionId": r.ID, "folio": r.Folio, "status": r.Status}).Info("reposition decided")
	dispatch(ev)
	return r, nil
}

// CompleteReposition completes the request when the requester belongs to admin or envios,
// otherwise it only asks them for the completion.
func CompleteReposition(id types.ID, req CompletionRequest, s *session.Session) (*CompletionResult, error) {
	var result *CompletionResult
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		rep, err := findReposition(tx, id)
		if err != nil {
			return err
		}
		if !canTransit(rep.Status, domain.StatusCompletado) {
			return bizerror.InvalidState(fmt.Sprintf("reposition %s is already %s", rep.Folio, rep.Status))
		}

		now := time.Now()
		notes := strings.TrimSpace(req.Notes)
		if s.InArea(domain.AreaAdmin, domain.AreaEnvios) {
			oldStatus := rep.Status
			if err := updateReposition(tx, rep, map[string]interface{}{
				"status": domain.StatusCompletado, "completed_at": now, "approved_by": s.Identity.ID,
			}); err != nil {
				return err
			}
			description := "Reposition completed"
			if notes != "" {
				description += ": " + notes
			}
			if err := appendHistory(tx, rep, domain.ActionCompleted, description, "", "", &s.Identity, now); err != nil {
				return err
			}
			ev = event.NewRepositionEvent(rep, event.EventCategoryPropertyUpdated, domain.ActionCompleted, &s.Identity, now,
				event.UpdatedProperty{PropertyName: "status", OldValue: string(oldStatus), NewValue: string(rep.Status)})
			if err := notification.Notify(tx, ev, rep.ID, []types.ID{rep.CreatedBy}, notification.Template{
				Type:    notification.TypeRepositionCompleted,
				Title:   "Solicitud completada",
				Message: fmt.Sprintf("La solicitud %s fue completada por %s", rep.Folio, s.Identity.DisplayName()),
			}); err != nil {
				return err
			}
			result = &CompletionResult{Outcome: OutcomeCompleted, Reposition: rep}
			return nil
		}

		description := "Completion requested"
		if notes != "" {
			description += ": " + notes
		}
		if err := appendHistory(tx, rep, domain.ActionCompletionRequested, description, "", "", &s.Identity, now); err != nil {
			return err
		}
		ev = event.NewRepositionEvent(rep, event.EventCategoryPropertyUpdated, domain.ActionCompletionRequested, &s.Identity, now)
		if err := notification.NotifyAreas(tx, ev, rep.ID, s.Identity.ID, notification.Template{
			Type:    notification.TypeCompletionApprovalNeeded,
			Title:   "Aprobación de finalización requerida",
			Message: fmt.Sprintf("%s solicita completar la solicitud %s", s.Identity.DisplayName(), rep.Folio),
		}, domain.AreaAdmin, domain.AreaEnvios, domain.AreaOperaciones); err != nil {
			return err
		}
		result = &CompletionResult{Outcome: OutcomeApprovalRequested, Reposition: rep}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logrus.WithFields(logrus.Fields{"repositionId": id, "outcome": result.Outcome}).Info("reposition completion")
	dispatch(ev)
	return result, nil
}

// DeleteReposition marks the reposition as eliminado. Rows are kept for auditing.
func DeleteReposition(id types.ID, req DeletionRequest, s *session.Session) error {
	reason := strings.TrimSpace(req.Reason)
	if len([]rune(reason)) < MinDeletionReasonLength {
		return bizerror.BadParam(fmt.Sprintf("reason must have at least %d characters", MinDeletionReasonLength))
	}

	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		rep, err := findReposition(tx, id)
		if err != nil {
			return err
		}
		if !canTransit(rep.Status, domain.StatusEliminado) {
			return bizerror.InvalidState(fmt.Sprintf("reposition %s is already %s", rep.Folio, rep.Status))
		}

		now := time.Now()
		oldStatus := rep.Status
		if err := updateReposition(tx, rep, map[string]interface{}{
			"status": domain.StatusEliminado, "completed_at": now,
		}); err != nil {
			return err
		}
		if err := appendHistory(tx, rep, domain.ActionDeleted, "Reposición eliminada. Motivo: "+reason,
			"", "", &s.Identity, now); err != nil {
			return err
		}

		ev = event.NewRepositionEvent(rep, event.EventCategoryDeleted, domain.ActionDeleted, &s.Identity, now,
			event.UpdatedProperty{PropertyName: "status", OldValue: string(oldStatus), NewValue: string(rep.Status)})
		if rep.CreatedBy != s.Identity.ID {
			if err := notification.Notify(tx, ev, rep.ID, []types.ID{rep.CreatedBy}, notification.Template{
				Type:    notification.TypeRepositionDeleted,
				Title:   "Solicitud eliminada",
				Message: fmt.Sprintf("La solicitud %s fue eliminada. Motivo: %s", rep.Folio, reason),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	logrus.WithFields(logrus.Fields{"repositionId": id, "by": s.Identity.ID}).Info("reposition deleted")
	dispatch(ev)
	return nil
}
