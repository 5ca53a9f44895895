package reposition

import (
	"errors"
	"fmt"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/event"
	"garmentflow/idgen"
	"garmentflow/notification"
	"garmentflow/persistence"
	"garmentflow/session"
	"strconv"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	RequestTransferFunc       = RequestTransfer
	ProcessTransferFunc       = ProcessTransfer
	QueryPendingTransfersFunc = QueryPendingTransfers
)

type TransferRequest struct {
	ToArea      domain.Area `json:"toArea" binding:"required"`
	Notes       string      `json:"notes"`
	ConsumoTela *float64    `json:"consumoTela"`
}

type TransferProcessing struct {
	Action domain.TransferStatus `json:"action" binding:"required"`
}

// RequestTransfer opens a pending handoff of an approved reposition from fromArea to req.ToArea.
// When corte hands off, the measured fabric consumption is written first.
func RequestTransfer(id types.ID, fromArea domain.Area, req TransferRequest, s *session.Session) (*domain.RepositionTransfer, error) {
	if !req.ToArea.Valid() {
		return nil, bizerror.BadParam("unknown area '" + string(req.ToArea) + "'")
	}
	if req.ConsumoTela != nil && *req.ConsumoTela < 0 {
		return nil, bizerror.BadParam("consumoTela must not be negative")
	}

	var t *domain.RepositionTransfer
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		rep, err := findReposition(tx, id)
		if err != nil {
			return err
		}
		if rep.Status != domain.StatusAprobado {
			return bizerror.InvalidState(fmt.Sprintf("reposition %s is %s, only approved repositions can be transferred", rep.Folio, rep.Status))
		}

		now := time.Now()
		var props []event.UpdatedProperty
		if fromArea == domain.AreaCorte && req.ConsumoTela != nil {
			old := rep.ConsumoTela
			if err := updateReposition(tx, rep, map[string]interface{}{"consumo_tela": *req.ConsumoTela}); err != nil {
				return err
			}
			props = append(props, event.UpdatedProperty{PropertyName: "consumoTela",
				OldValue: strconv.FormatFloat(old, 'f', -1, 64), NewValue: strconv.FormatFloat(rep.ConsumoTela, 'f', -1, 64)})
		}

		transfer := domain.RepositionTransfer{
			ID:           idgen.NextID(repositionIdWorker),
			RepositionID: rep.ID,
			FromArea:     fromArea,
			ToArea:       req.ToArea,
			Status:       domain.TransferPending,
			Notes:        strings.TrimSpace(req.Notes),
			CreatedBy:    s.Identity.ID,
			CreatedAt:    now,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return err
		}
		if err := appendHistory(tx, rep, domain.ActionTransferRequested,
			fmt.Sprintf("Transfer requested from %s to %s", fromArea, req.ToArea),
			fromArea, req.ToArea, &s.Identity, now); err != nil {
			return err
		}

		ev = event.NewRepositionEvent(rep, event.EventCategoryRelationUpdated, domain.ActionTransferRequested, &s.Identity, now, props...)
		if err := notification.NotifyAreas(tx, ev, rep.ID, 0, notification.Template{
			Type:    notification.TypeRepositionTransfer,
			Title:   "Nueva transferencia de reposición",
			Message: fmt.Sprintf("Se solicita transferir la reposición %s de %s a %s", rep.Folio, fromArea, req.ToArea),
		}, req.ToArea); err != nil {
			return err
		}
		t = &transfer
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logrus.WithFields(logrus.Fields{"repositionId": id, "transferId": t.ID, "from": t.FromArea, "to": t.ToArea}).Info("transfer requested")
	dispatch(ev)
	return t, nil
}

// ProcessTransfer accepts or rejects a pending transfer. Only an accepted transfer moves the
// reposition to the destination area.
func ProcessTransfer(transferID types.ID, action domain.TransferStatus, s *session.Session) (*domain.RepositionTransfer, error) {
	if action != domain.TransferAccepted && action != domain.TransferRejected {
		return nil, bizerror.BadParam("action must be one of accepted, rejected")
	}

	var t *domain.RepositionTransfer
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		transfer := domain.RepositionTransfer{}
		if err := tx.Where("id = ?", transferID).First(&transfer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if transfer.Status != domain.TransferPending {
			return bizerror.InvalidState(fmt.Sprintf("transfer %s was already %s", transfer.ID, transfer.Status))
		}
		if !s.InArea(transfer.ToArea, domain.AreaAdmin) {
			return bizerror.ErrForbidden
		}

		rep, err := findReposition(tx, transfer.RepositionID)
		if err != nil {
			return err
		}

		now := time.Now()
		var props []event.UpdatedProperty
		if action == domain.TransferAccepted {
			if rep.Status.Terminal() {
				return bizerror.InvalidState(fmt.Sprintf("reposition %s is already %s", rep.Folio, rep.Status))
			}
			oldArea := rep.CurrentArea
			if err := updateReposition(tx, rep, map[string]interface{}{"current_area": transfer.ToArea}); err != nil {
				return err
			}
			props = append(props, event.UpdatedProperty{PropertyName: "currentArea", OldValue: string(oldArea), NewValue: string(rep.CurrentArea)})
		}

		db := tx.Model(&domain.RepositionTransfer{}).Where("id = ? AND status = ?", transfer.ID, domain.TransferPending).
			Updates(map[string]interface{}{"status": action, "processed_by": s.Identity.ID, "processed_at": now})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConcurrentModification
		}
		transfer.Status, transfer.ProcessedBy, transfer.ProcessedAt = action, s.Identity.ID, &now

		historyAction, verb := domain.ActionTransferAccepted, "aceptada"
		if action == domain.TransferRejected {
			historyAction, verb = domain.ActionTransferRejected, "rechazada"
		}
		if err := appendHistory(tx, rep, historyAction,
			fmt.Sprintf("Transfer %s from %s to %s", action, transfer.FromArea, transfer.ToArea),
			transfer.FromArea, transfer.ToArea, &s.Identity, now); err != nil {
			return err
		}

		ev = event.NewRepositionEvent(rep, event.EventCategoryRelationUpdated, historyAction, &s.Identity, now, props...)
		if err := notification.Notify(tx, ev, rep.ID, []types.ID{transfer.CreatedBy}, notification.Template{
			Type:    notification.TypeTransferProcessed,
			Title:   "Transferencia " + verb,
			Message: fmt.Sprintf("La transferencia de la reposición %s fue %s", rep.Folio, verb),
		}); err != nil {
			return err
		}
		if action == domain.TransferAccepted {
			if err := notification.NotifyAreas(tx, ev, rep.ID, s.Identity.ID, notification.Template{
				Type:    notification.TypeRepositionReceived,
				Title:   "Nueva reposición recibida",
				Message: fmt.Sprintf("La reposición %s llegó a tu área", rep.Folio),
			}, transfer.ToArea); err != nil {
				return err
			}
		}
		t = &transfer
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logrus.WithFields(logrus.Fields{"transferId": transferID, "repositionId": t.RepositionID, "action": action}).Info("transfer processed")
	dispatch(ev)
	return t, nil
}

// QueryPendingTransfers lists the pending transfers addressed to the area of the session user.
func QueryPendingTransfers(s *session.Session) ([]domain.RepositionTransfer, error) {
	r := []domain.RepositionTransfer{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).
		Where("to_area = ? AND status = ?", s.Identity.Area, domain.TransferPending).
		Order("created_at DESC").Find(&r).Error; err != nil {
		return nil, err
	}
	return r, nil
}
