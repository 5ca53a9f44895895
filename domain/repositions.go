package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Reposition struct {
	ID    types.ID       `json:"id" gorm:"primary_key"`
	Folio string         `json:"folio" gorm:"unique_index;size:32;not null"`
	Type  RepositionType `json:"type" gorm:"size:20;not null"`

	SolicitanteNombre string `json:"solicitanteNombre"`
	SolicitanteArea   Area   `json:"solicitanteArea" gorm:"size:32"`
	NoSolicitud       string `json:"noSolicitud"`
	NoHoja            string `json:"noHoja"`
	FechaCorte        string `json:"fechaCorte"`

	CausanteDano      string `json:"causanteDano"`
	TipoAccidente     string `json:"tipoAccidente"`
	OtroAccidente     string `json:"otroAccidente"`
	DescripcionSuceso string `json:"descripcionSuceso" sql:"type:TEXT"`

	ModeloPrenda string  `json:"modeloPrenda"`
	Tela         string  `json:"tela"`
	Color        string  `json:"color"`
	TipoPieza    string  `json:"tipoPieza"`
	ConsumoTela  float64 `json:"consumoTela"`

	Urgencia             Urgency `json:"urgencia" gorm:"size:20"`
	Observaciones        string  `json:"observaciones" sql:"type:TEXT"`
	VolverHacer          string  `json:"volverHacer"`
	MaterialesImplicados string  `json:"materialesImplicados" sql:"type:TEXT"`

	CurrentArea Area             `json:"currentArea" gorm:"size:32;index"`
	Status      RepositionStatus `json:"status" gorm:"size:20;index"`

	CreatedBy   types.ID   `json:"createdBy"`
	ApprovedBy  types.ID   `json:"approvedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ApprovedAt  *time.Time `json:"approvedAt"`
	CompletedAt *time.Time `json:"completedAt"`

	Version int `json:"version"`
}

func (r *Reposition) TableName() string {
	return "repositions"
}

type RepositionPiece struct {
	ID            types.ID `json:"id" gorm:"primary_key"`
	RepositionID  types.ID `json:"repositionId" gorm:"index"`
	Talla         string   `json:"talla"`
	Cantidad      int      `json:"cantidad"`
	FolioOriginal string   `json:"folioOriginal"`
}

func (r *RepositionPiece) TableName() string {
	return "reposition_pieces"
}

type RepositionProduct struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	RepositionID types.ID `json:"repositionId" gorm:"index"`
	ModeloPrenda string   `json:"modeloPrenda"`
	Tela         string   `json:"tela"`
	Color        string   `json:"color"`
	TipoPieza    string   `json:"tipoPieza"`
	ConsumoTela  float64  `json:"consumoTela"`
}

func (r *RepositionProduct) TableName() string {
	return "reposition_products"
}

type RepositionContrastFabric struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	RepositionID types.ID `json:"repositionId" gorm:"unique_index"`
	Tela         string   `json:"tela"`
	Color        string   `json:"color"`
	Consumo      float64  `json:"consumo"`
}

func (r *RepositionContrastFabric) TableName() string {
	return "reposition_contrast_fabrics"
}

type RepositionTransfer struct {
	ID           types.ID       `json:"id" gorm:"primary_key"`
	RepositionID types.ID       `json:"repositionId" gorm:"index"`
	FromArea     Area           `json:"fromArea" gorm:"size:32"`
	ToArea       Area           `json:"toArea" gorm:"size:32;index"`
	Status       TransferStatus `json:"status" gorm:"size:20"`
	Notes        string         `json:"notes" sql:"type:TEXT"`

	CreatedBy   types.ID   `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	ProcessedBy types.ID   `json:"processedBy,omitempty"`
	ProcessedAt *time.Time `json:"processedAt"`
}

func (r *RepositionTransfer) TableName() string {
	return "reposition_transfers"
}

// RunningSlotValue marks the running timer of a (reposition, area) pair. Stopped timers hold NULL,
// so the unique index over (reposition_id, area, running_slot) admits a single running timer.
const RunningSlotValue = "running"

type RepositionTimer struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	RepositionID types.ID `json:"repositionId" gorm:"unique_index:uk_timer_running"`
	Area         Area     `json:"area" gorm:"size:32;unique_index:uk_timer_running"`
	UserID       types.ID `json:"userId"`

	StartTime *time.Time `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`

	ManualStartTime string `json:"manualStartTime" gorm:"size:5"`
	ManualEndTime   string `json:"manualEndTime" gorm:"size:5"`
	ManualDate      string `json:"manualDate" gorm:"size:10"`

	ElapsedMinutes int     `json:"elapsedMinutes"`
	IsRunning      bool    `json:"isRunning"`
	RunningSlot    *string `json:"-" gorm:"size:8;unique_index:uk_timer_running"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *RepositionTimer) TableName() string {
	return "reposition_timers"
}

// HasManualSpan reports whether both manual bounds are recorded.
func (r *RepositionTimer) HasManualSpan() bool {
	return r.ManualStartTime != "" && r.ManualEndTime != ""
}

type RepositionHistory struct {
	ID           types.ID      `json:"id" gorm:"primary_key"`
	RepositionID types.ID      `json:"repositionId" gorm:"index"`
	Action       HistoryAction `json:"action" gorm:"size:32"`
	Description  string        `json:"description" sql:"type:TEXT"`
	FromArea     Area          `json:"fromArea,omitempty" gorm:"size:32"`
	ToArea       Area          `json:"toArea,omitempty" gorm:"size:32"`
	UserID       types.ID      `json:"userId"`
	UserName     string        `json:"userName"`
	CreatedAt    time.Time     `json:"createdAt"`
}

func (r *RepositionHistory) TableName() string {
	return "reposition_histories"
}

type RepositionMaterial struct {
	ID           types.ID `json:"id" gorm:"primary_key"`
	RepositionID types.ID `json:"repositionId" gorm:"unique_index"`

	IsPaused    bool       `json:"isPaused"`
	PauseReason string     `json:"pauseReason" sql:"type:TEXT"`
	PausedBy    types.ID   `json:"pausedBy,omitempty"`
	PausedAt    *time.Time `json:"pausedAt"`
	ResumedBy   types.ID   `json:"resumedBy,omitempty"`
	ResumedAt   *time.Time `json:"resumedAt"`

	MaterialStatus   MaterialStatus `json:"materialStatus" gorm:"size:20"`
	MissingMaterials string         `json:"missingMaterials" sql:"type:TEXT"`
	Notes            string         `json:"notes" sql:"type:TEXT"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *RepositionMaterial) TableName() string {
	return "reposition_materials"
}

type RepositionDocument struct {
	ID           types.ID  `json:"id" gorm:"primary_key"`
	RepositionID types.ID  `json:"repositionId" gorm:"index"`
	Filename     string    `json:"filename" gorm:"size:255"`
	OriginalName string    `json:"originalName" gorm:"size:255"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType" gorm:"size:128"`
	UploadedBy   types.ID  `json:"uploadedBy"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *RepositionDocument) TableName() string {
	return "reposition_documents"
}

// FolioSequence holds the next folio counter of one calendar month, keyed by the folio prefix.
type FolioSequence struct {
	Prefix    string `gorm:"primary_key;size:32"`
	NextValue int
}

func (r *FolioSequence) TableName() string {
	return "folio_sequences"
}

type Notification struct {
	ID           types.ID  `json:"id" gorm:"primary_key"`
	UserID       types.ID  `json:"userId" gorm:"index"`
	Type         string    `json:"type" gorm:"size:64"`
	Title        string    `json:"title"`
	Message      string    `json:"message" sql:"type:TEXT"`
	RepositionID types.ID  `json:"repositionId"`
	IsRead       bool      `json:"read"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *Notification) TableName() string {
	return "notifications"
}
