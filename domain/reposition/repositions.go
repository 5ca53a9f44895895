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
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	repositionIdWorker = idgen.NewWorker()
	validate           = validator.New()

	CreateRepositionFunc = CreateReposition
)

type PieceCreation struct {
	Talla         string `json:"talla" validate:"required"`
	Cantidad      int    `json:"cantidad" validate:"gte=1"`
	FolioOriginal string `json:"folioOriginal"`
}

type ProductCreation struct {
	ModeloPrenda string  `json:"modeloPrenda" validate:"required"`
	Tela         string  `json:"tela" validate:"required"`
	Color        string  `json:"color" validate:"required"`
	TipoPieza    string  `json:"tipoPieza" validate:"required"`
	ConsumoTela  float64 `json:"consumoTela" validate:"gte=0"`
}

type ContrastFabricCreation struct {
	Tela    string  `json:"tela" validate:"required"`
	Color   string  `json:"color" validate:"required"`
	Consumo float64 `json:"consumo" validate:"gte=0"`
}

// RepositionCreation is the payload of a new request. Product fields are required for a
// repocision, volverHacer and materialesImplicados for a reproceso.
type RepositionCreation struct {
	Type              domain.RepositionType `json:"type" validate:"required,oneof=repocision reproceso"`
	SolicitanteNombre string                `json:"solicitanteNombre" validate:"required"`
	NoSolicitud       string                `json:"noSolicitud" validate:"required"`
	NoHoja            string                `json:"noHoja"`
	FechaCorte        string                `json:"fechaCorte"`

	CausanteDano      string `json:"causanteDano" validate:"required"`
	TipoAccidente     string `json:"tipoAccidente"`
	OtroAccidente     string `json:"otroAccidente"`
	DescripcionSuceso string `json:"descripcionSuceso" validate:"required"`

	ModeloPrenda string  `json:"modeloPrenda" validate:"required_if=Type repocision"`
	Tela         string  `json:"tela" validate:"required_if=Type repocision"`
	Color        string  `json:"color" validate:"required_if=Type repocision"`
	TipoPieza    string  `json:"tipoPieza" validate:"required_if=Type repocision"`
	ConsumoTela  float64 `json:"consumoTela" validate:"gte=0"`

	Urgencia             domain.Urgency `json:"urgencia" validate:"required,oneof=urgente intermedio poco_urgente"`
	Observaciones        string         `json:"observaciones"`
	VolverHacer          string         `json:"volverHacer" validate:"required_if=Type reproceso"`
	MaterialesImplicados string         `json:"materialesImplicados" validate:"required_if=Type reproceso"`

	Pieces        []PieceCreation         `json:"pieces" validate:"dive"`
	Productos     []ProductCreation       `json:"productos" validate:"dive"`
	TelaContraste *ContrastFabricCreation `json:"telaContraste"`
}

func (c *RepositionCreation) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &bizerror.ErrBadParam{Cause: err}
	}
	return nil
}

// CreateReposition persists the request with its pieces, products, contrast fabric and the
// already stored documents, then notifies admin, operaciones and envios.
func CreateReposition(c *RepositionCreation, documents []domain.RepositionDocument, s *session.Session) (*domain.Reposition, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !s.Identity.Area.Valid() {
		return nil, bizerror.BadParam("requester area '" + string(s.Identity.Area) + "' is unknown")
	}

	var r *domain.Reposition
	var ev *event.EventRecord
	var txErr error
	for attempt := 1; attempt <= FolioAllocationAttempts; attempt++ {
		r, ev, txErr = createReposition(c, documents, s)
		if !errors.Is(txErr, bizerror.ErrConcurrentModification) {
			break
		}
		logrus.WithField("attempt", attempt).Warn("folio allocated concurrently, retrying")
	}
	if txErr != nil {
		return nil, txErr
	}

	logrus.WithFields(logrus.Fields{"repositionId": r.ID, "folio": r.Folio, "type": r.Type}).Info("reposition created")
	dispatch(ev)
	return r, nil
}

func createReposition(c *RepositionCreation, documents []domain.RepositionDocument, s *session.Session) (r *domain.Reposition, ev *event.EventRecord, err error) {
	err = persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		folio, err := NextFolioFunc(tx, now)
		if err != nil {
			return err
		}

		rep := domain.Reposition{
			ID:                   idgen.NextID(repositionIdWorker),
			Folio:                folio,
			Type:                 c.Type,
			SolicitanteNombre:    c.SolicitanteNombre,
			SolicitanteArea:      s.Identity.Area,
			NoSolicitud:          c.NoSolicitud,
			NoHoja:               c.NoHoja,
			FechaCorte:           c.FechaCorte,
			CausanteDano:         c.CausanteDano,
			TipoAccidente:        c.TipoAccidente,
			OtroAccidente:        c.OtroAccidente,
			DescripcionSuceso:    c.DescripcionSuceso,
			ModeloPrenda:         c.ModeloPrenda,
			Tela:                 c.Tela,
			Color:                c.Color,
			TipoPieza:            c.TipoPieza,
			ConsumoTela:          c.ConsumoTela,
			Urgencia:             c.Urgencia,
			Observaciones:        c.Observaciones,
			VolverHacer:          c.VolverHacer,
			MaterialesImplicados: c.MaterialesImplicados,
			CurrentArea:          s.Identity.Area,
			Status:               domain.StatusPendiente,
			CreatedBy:            s.Identity.ID,
			CreatedAt:            now,
		}
		if err := tx.Create(&rep).Error; err != nil {
			return err
		}

		for _, p := range c.Pieces {
			piece := domain.RepositionPiece{ID: idgen.NextID(repositionIdWorker), RepositionID: rep.ID,
				Talla: p.Talla, Cantidad: p.Cantidad, FolioOriginal: p.FolioOriginal}
			if err := tx.Create(&piece).Error; err != nil {
				return err
			}
		}
		for _, p := range c.Productos {
			product := domain.RepositionProduct{ID: idgen.NextID(repositionIdWorker), RepositionID: rep.ID,
				ModeloPrenda: p.ModeloPrenda, Tela: p.Tela, Color: p.Color, TipoPieza: p.TipoPieza, ConsumoTela: p.ConsumoTela}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
		}
		if c.TelaContraste != nil {
			fabric := domain.RepositionContrastFabric{ID: idgen.NextID(repositionIdWorker), RepositionID: rep.ID,
				Tela: c.TelaContraste.Tela, Color: c.TelaContraste.Color, Consumo: c.TelaContraste.Consumo}
			if err := tx.Create(&fabric).Error; err != nil {
				return err
			}
		}
		for _, d := range documents {
			d.ID = idgen.NextID(repositionIdWorker)
			d.RepositionID = rep.ID
			d.UploadedBy = s.Identity.ID
			d.CreatedAt = now
			if err := tx.Create(&d).Error; err != nil {
				return err
			}
		}

		if err := appendHistory(tx, &rep, domain.ActionCreated, fmt.Sprintf("Reposition %s created", rep.Type),
			"", "", &s.Identity, now); err != nil {
			return err
		}

		ev = event.NewRepositionEvent(&rep, event.EventCategoryCreated, domain.ActionCreated, &s.Identity, now)
		if err := notification.NotifyAreas(tx, ev, rep.ID, 0, notification.Template{
			Type:    notification.TypeNewReposition,
			Title:   "Nueva solicitud de reposición",
			Message: fmt.Sprintf("%s creó la solicitud %s", s.Identity.DisplayName(), rep.Folio),
		}, domain.AreaAdmin, domain.AreaOperaciones, domain.AreaEnvios); err != nil {
			return err
		}

		r = &rep
		return nil
	})
	return
}

func findReposition(tx *gorm.DB, id types.ID) (*domain.Reposition, error) {
	r := domain.Reposition{}
	if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// updateReposition applies changes only if nobody updated the reposition since it was read.
func updateReposition(tx *gorm.DB, r *domain.Reposition, changes map[string]interface{}) error {
	changes["version"] = r.Version + 1
	db := tx.Model(&domain.Reposition{}).Where("id = ? AND version = ?", r.ID, r.Version).Updates(changes)
	if db.Error != nil {
		return db.Error
	}
	if db.RowsAffected != 1 {
		return bizerror.ErrConcurrentModification
	}
	return tx.Where("id = ?", r.ID).First(r).Error
}

func appendHistory(tx *gorm.DB, r *domain.Reposition, action domain.HistoryAction, description string,
	fromArea, toArea domain.Area, identity *session.Identity, now time.Time) error {

	h := domain.RepositionHistory{
		ID:           idgen.NextID(repositionIdWorker),
		RepositionID: r.ID,
		Action:       action,
		Description:  description,
		FromArea:     fromArea,
		ToArea:       toArea,
		UserID:       identity.ID,
		UserName:     identity.DisplayName(),
		CreatedAt:    now,
	}
	return tx.Create(&h).Error
}

func dispatch(ev *event.EventRecord) {
	if event.InvokeHandlersFunc != nil && ev != nil {
		event.InvokeHandlersFunc(ev)
	}
}
