package reposition_test

import (
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/event"
	"garmentflow/persistence"
	"garmentflow/session"
	"garmentflow/testinfra"
	"testing"

	. "github.com/onsi/gomega"
)

func setup(t *testing.T, testDatabase **testinfra.TestDatabase) *[]*event.EventRecord {
	db := testinfra.StartTestDatabase("garmentflow")
	*testDatabase = db
	testinfra.MigrateDomain(db)
	persistence.ActiveDataSourceManager = db.DS

	events := []*event.EventRecord{}
	event.InvokeHandlersFunc = func(record *event.EventRecord) []event.EventHandleResult {
		events = append(events, record)
		return nil
	}
	return &events
}

func teardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	testinfra.StopTestDatabase(testDatabase)
}

func repocisionCreation() *reposition.RepositionCreation {
	return &reposition.RepositionCreation{
		Type:              domain.RepositionTypeRepocision,
		SolicitanteNombre: "Juan",
		NoSolicitud:       "S-100",
		CausanteDano:      "corte",
		DescripcionSuceso: "pieza mal cortada",
		ModeloPrenda:      "camisa",
		Tela:              "popelina",
		Color:             "azul",
		TipoPieza:         "manga",
		ConsumoTela:       1.5,
		Urgencia:          domain.UrgencyUrgente,
		Pieces:            []reposition.PieceCreation{{Talla: "M", Cantidad: 2}, {Talla: "L", Cantidad: 1, FolioOriginal: "F-1"}},
	}
}

func createApproved(s, approver *session.Session) *domain.Reposition {
	r, err := reposition.CreateReposition(repocisionCreation(), nil, s)
	Expect(err).To(BeNil())
	r, err = reposition.ApproveReposition(r.ID, reposition.ApprovalRequest{Action: domain.StatusAprobado}, approver)
	Expect(err).To(BeNil())
	return r
}
