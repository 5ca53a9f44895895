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
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	PauseRepositionFunc         = PauseReposition
	ResumeRepositionFunc        = ResumeReposition
	UpdateMaterialStatusFunc    = UpdateMaterialStatus
	QueryMaterialFunc           = QueryMaterial
	QueryAlmacenRepositionsFunc = QueryAlmacenRepositions
)

type PauseRequest struct {
	Reason string `json:"reason"`
}

type MaterialStatusUpdating struct {
	MaterialStatus   domain.MaterialStatus `json:"materialStatus" binding:"required"`
	MissingMaterials string                `json:"missingMaterials"`
	Notes            string                `json:"notes"`
}

// AlmacenReposition is a row of the warehouse board: an open reposition and its pause flag.
type AlmacenReposition struct {
	ID                types.ID                `json:"id"`
	Folio             string                  `json:"folio"`
	Type              domain.RepositionType   `json:"type"`
	SolicitanteNombre string                  `json:"solicitanteNombre"`
	SolicitanteArea   domain.Area             `json:"solicitanteArea"`
	ModeloPrenda      string                  `json:"modeloPrenda"`
	Tela              string                  `json:"tela"`
	Color             string                  `json:"color"`
	TipoPieza         string                  `json:"tipoPieza"`
	ConsumoTela       float64                 `json:"consumoTela"`
	Urgencia          domain.Urgency          `json:"urgencia"`
	CurrentArea       domain.Area             `json:"currentArea"`
	Status            domain.RepositionStatus `json:"status"`
	CreatedAt         time.Time               `json:"createdAt"`
	IsPaused          bool                    `json:"isPaused"`
	PauseReason       string                  `json:"pauseReason"`
}

func PauseReposition(id types.ID, req PauseRequest, s *session.Session) (*domain.RepositionMaterial, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, bizerror.BadParam("reason is required")
	}

	var m *domain.RepositionMaterial
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		rep, material, err := findOpenRepositionMaterial(tx, id)
		if err != nil {
			return err
		}
		if material.IsPaused {
			return bizerror.InvalidState(fmt.Sprintf("reposition %s is already paused", rep.Folio))
		}

		now := time.Now()
		material.IsPaused, material.PauseReason, material.PausedBy, material.PausedAt = true, reason, s.Identity.ID, &now
		material.UpdatedAt = now
		if err := tx.Save(material).Error; err != nil {
			return err
		}
		if err := appendHistory(tx, rep, domain.ActionPaused, "Reposición pausada por almacén. Motivo: "+reason,
			"", "", &s.Identity, now); err != nil {
			return err
		}

		ev = event.NewRepositionEvent(rep, event.EventCategoryPropertyUpdated, domain.ActionPaused, &s.Identity, now,
			event.UpdatedProperty{PropertyName: "isPaused", OldValue: "false", NewValue: "true"})
		if err := notification.NotifyAreas(tx, ev, rep.ID, 0, notification.Template{
			Type:    notification.TypeRepositionPaused,
			Title:   "Reposición pausada",
			Message: fmt.Sprintf("La reposición %s fue pausada por almacén. Motivo: %s", rep.Folio, reason),
		}, domain.AreaAdmin, domain.AreaOperaciones, domain.AreaEnvios); err != nil {
			return err
		}
		m = material
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logrus.WithFields(logrus.Fields{"repositionId": id, "reason": reason}).Info("reposition paused")
	dispatch(ev)
	return m, nil
}

func ResumeReposition(id types.ID, s *session.Session) (*domain.RepositionMaterial, error) {
	var m *domain.RepositionMaterial
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		rep, material, err := findOpenRepositionMaterial(tx, id)
		if err != nil {
			return err
		}
		if !material.IsPaused {
			return bizerror.InvalidState(fmt.Sprintf("reposition %s is not paused", rep.Folio))
		}

		now := time.Now()
		material.IsPaused, material.ResumedBy, material.ResumedAt = false, s.Identity.ID, &now
		material.UpdatedAt = now
		if err := tx.Save(material).Error; err != nil {
			return err
		}
		if err := appendHistory(tx, rep, domain.ActionResumed, "Reposición reanudada por almacén",
			"", "", &s.Identity, now); err != nil {
			return err
		}

		ev = event.NewRepositionEvent(rep, event.EventCategoryPropertyUpdated, domain.ActionResumed, &s.Identity, now,
			event.UpdatedProperty{PropertyName: "isPaused", OldValue: "true", NewValue: "false"})
		if err := notification.NotifyAreas(tx, ev, rep.ID, 0, notification.Template{
			Type:    notification.TypeRepositionResumed,
			Title:   "Reposición reanudada",
			Message: fmt.Sprintf("La reposición %s fue reanudada por almacén", rep.Folio),
		}, domain.AreaAdmin, domain.AreaOperaciones, domain.AreaEnvios); err != nil {
			return err
		}
		m = material
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logrus.WithField("repositionId", id).Info("reposition resumed")
	dispatch(ev)
	return m, nil
}

func UpdateMaterialStatus(id types.ID, req MaterialStatusUpdating, s *session.Session) (*domain.RepositionMaterial, error) {
	if !req.MaterialStatus.Valid() {
		return nil, bizerror.BadParam("unknown material status '" + string(req.MaterialStatus) + "'")
	}

	var m *domain.RepositionMaterial
	var ev *event.EventRecord
	txErr := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		rep, material, err := findOpenRepositionMaterial(tx, id)
		if err != nil {
			return err
		}

		now := time.Now()
		old := material.MaterialStatus
		material.MaterialStatus = req.MaterialStatus
		material.MissingMaterials = strings.TrimSpace(req.MissingMaterials)
		material.Notes = strings.TrimSpace(req.Notes)
		material.UpdatedAt = now
		if err := tx.Save(material).Error; err != nil {
			return err
		}

		description := "Estado de materiales actualizado: " + string(req.MaterialStatus)
		if material.MissingMaterials != "" {
			description += " - Faltantes: " + material.MissingMaterials
		}
		if err := appendHistory(tx, rep, domain.ActionMaterialStatusUpdated, description, "", "", &s.Identity, now); err != nil {
			return err
		}
		ev = event.NewRepositionEvent(rep, event.EventCategoryPropertyUpdated, domain.ActionMaterialStatusUpdated, &s.Identity, now,
			event.UpdatedProperty{PropertyName: "materialStatus", OldValue: string(old), NewValue: string(req.MaterialStatus)})
		m = material
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logrus.WithFields(logrus.Fields{"repositionId": id, "materialStatus": req.MaterialStatus}).Info("material status updated")
	dispatch(ev)
	return m, nil
}

// QueryMaterial returns the material row of the reposition, nil when almacén never touched it.
func QueryMaterial(id types.ID, s *session.Session) (*domain.RepositionMaterial, error) {
	m := domain.RepositionMaterial{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Where("reposition_id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// QueryAlmacenRepositions lists the open repositions, newest first, with their pause flags.
func QueryAlmacenRepositions(s *session.Session) ([]AlmacenReposition, error) {
	r := []AlmacenReposition{}
	err := persistence.ActiveDataSourceManager.GormDB(s.Context).Table("repositions").
		Select("repositions.id, repositions.folio, repositions.type, repositions.solicitante_nombre, "+
			"repositions.solicitante_area, repositions.modelo_prenda, repositions.tela, repositions.color, "+
			"repositions.tipo_pieza, repositions.consumo_tela, repositions.urgencia, repositions.current_area, "+
			"repositions.status, repositions.created_at, reposition_materials.is_paused, reposition_materials.pause_reason").
		Joins("LEFT JOIN reposition_materials ON reposition_materials.reposition_id = repositions.id").
		Where("repositions.status NOT IN (?)", []domain.RepositionStatus{domain.StatusEliminado, domain.StatusCompletado}).
		Order("repositions.created_at DESC").Scan(&r).Error
	if err != nil {
		return nil, err
	}
	return r, nil
}

// findOpenRepositionMaterial loads a non terminal reposition and its material row, a new
// unsaved row when none exists yet.
func findOpenRepositionMaterial(tx *gorm.DB, id types.ID) (*domain.Reposition, *domain.RepositionMaterial, error) {
	rep, err := findReposition(tx, id)
	if err != nil {
		return nil, nil, err
	}
	if rep.Status.Terminal() {
		return nil, nil, bizerror.InvalidState(fmt.Sprintf("reposition %s is already %s", rep.Folio, rep.Status))
	}
	material := domain.RepositionMaterial{}
	err = tx.Where("reposition_id = ?", id).First(&material).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rep, &domain.RepositionMaterial{ID: idgen.NextID(repositionIdWorker), RepositionID: id,
			MaterialStatus: domain.MaterialDisponible}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return rep, &material, nil
}
