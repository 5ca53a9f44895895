package domain

// Area is a department of the plant. Every user belongs to exactly one area.
type Area string

const (
	AreaPatronaje   = Area("patronaje")
	AreaCorte       = Area("corte")
	AreaBordado     = Area("bordado")
	AreaEnsamble    = Area("ensamble")
	AreaPlancha     = Area("plancha")
	AreaCalidad     = Area("calidad")
	AreaOperaciones = Area("operaciones")
	AreaEnvios      = Area("envios")
	AreaAdmin       = Area("admin")
	AreaAlmacen     = Area("almacen")
	AreaDiseno      = Area("diseño")
)

var Areas = []Area{AreaPatronaje, AreaCorte, AreaBordado, AreaEnsamble, AreaPlancha, AreaCalidad,
	AreaOperaciones, AreaEnvios, AreaAdmin, AreaAlmacen, AreaDiseno}

func (a Area) Valid() bool {
	for _, v := range Areas {
		if v == a {
			return true
		}
	}
	return false
}

// In reports whether a is one of the given areas.
func (a Area) In(areas ...Area) bool {
	for _, v := range areas {
		if v == a {
			return true
		}
	}
	return false
}

// TrackingStage is a production stage shown in the tracking timeline. The stage list is a
// fixed subset of the areas, in production order.
type TrackingStage string

const (
	StagePatronaje = TrackingStage(AreaPatronaje)
	StageCorte     = TrackingStage(AreaCorte)
	StageBordado   = TrackingStage(AreaBordado)
	StageEnsamble  = TrackingStage(AreaEnsamble)
	StagePlancha   = TrackingStage(AreaPlancha)
	StageCalidad   = TrackingStage(AreaCalidad)
)

var TrackingStages = []TrackingStage{StagePatronaje, StageCorte, StageBordado, StageEnsamble, StagePlancha, StageCalidad}

func (s TrackingStage) Area() Area {
	return Area(s)
}

// StageIndexOf returns the position of the area in TrackingStages, -1 if the area is not a stage.
func StageIndexOf(area Area) int {
	for i, s := range TrackingStages {
		if s.Area() == area {
			return i
		}
	}
	return -1
}

type RepositionType string

const (
	RepositionTypeRepocision = RepositionType("repocision")
	RepositionTypeReproceso  = RepositionType("reproceso")
)

func (t RepositionType) Valid() bool {
	return t == RepositionTypeRepocision || t == RepositionTypeReproceso
}

// RepositionStatus is the lifecycle status. Completion and deletion are both terminal.
type RepositionStatus string

const (
	StatusPendiente  = RepositionStatus("pendiente")
	StatusAprobado   = RepositionStatus("aprobado")
	StatusRechazado  = RepositionStatus("rechazado")
	StatusEnProceso  = RepositionStatus("en_proceso")
	StatusCompletado = RepositionStatus("completado")
	StatusEliminado  = RepositionStatus("eliminado")
)

var RepositionStatuses = []RepositionStatus{StatusPendiente, StatusAprobado, StatusRechazado,
	StatusEnProceso, StatusCompletado, StatusEliminado}

func (s RepositionStatus) Valid() bool {
	for _, v := range RepositionStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s RepositionStatus) Terminal() bool {
	return s == StatusCompletado || s == StatusEliminado
}

type Urgency string

const (
	UrgencyUrgente     = Urgency("urgente")
	UrgencyIntermedio  = Urgency("intermedio")
	UrgencyPocoUrgente = Urgency("poco_urgente")
)

func (u Urgency) Valid() bool {
	return u == UrgencyUrgente || u == UrgencyIntermedio || u == UrgencyPocoUrgente
}

type TransferStatus string

const (
	TransferPending  = TransferStatus("pending")
	TransferAccepted = TransferStatus("accepted")
	TransferRejected = TransferStatus("rejected")
)

type HistoryAction string

const (
	ActionCreated               = HistoryAction("created")
	ActionApproved              = HistoryAction("approved")
	ActionRejected              = HistoryAction("rejected")
	ActionTransferRequested     = HistoryAction("transfer_requested")
	ActionTransferAccepted      = HistoryAction("transfer_accepted")
	ActionTransferRejected      = HistoryAction("transfer_rejected")
	ActionTimerStopped          = HistoryAction("timer_stopped")
	ActionPaused                = HistoryAction("paused")
	ActionResumed               = HistoryAction("resumed")
	ActionCompleted             = HistoryAction("completed")
	ActionDeleted               = HistoryAction("deleted")
	ActionCompletionRequested   = HistoryAction("completion_requested")
	ActionMaterialStatusUpdated = HistoryAction("material_status_updated")
)

type MaterialStatus string

const (
	MaterialDisponible   = MaterialStatus("disponible")
	MaterialParcial      = MaterialStatus("parcial")
	MaterialNoDisponible = MaterialStatus("no_disponible")
)

func (s MaterialStatus) Valid() bool {
	return s == MaterialDisponible || s == MaterialParcial || s == MaterialNoDisponible
}
