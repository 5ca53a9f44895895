package repositionrest_test

import (
	"bytes"
	"context"
	"garmentflow/bizerror"
	"garmentflow/document"
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/domain/reposition/repositionrest"
	"garmentflow/session"
	"garmentflow/testinfra"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func buildRouter(s *session.Session) *gin.Engine {
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	repositionrest.RegisterRepositionsRestAPI(router, testinfra.InjectSession(s))
	return router
}

func TestCreateRepositionAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should create reposition from json body", func(t *testing.T) {
		router := buildRouter(testinfra.BuildSession(10, domain.AreaCorte))
		var received *reposition.RepositionCreation
		reposition.CreateRepositionFunc = func(c *reposition.RepositionCreation, docs []domain.RepositionDocument, s *session.Session) (*domain.Reposition, error) {
			received = c
			Expect(docs).To(BeEmpty())
			Expect(s.Identity.ID).To(Equal(types.ID(10)))
			return &domain.Reposition{ID: 100, Folio: "JN-REQ-01-24-001", Type: c.Type, Status: domain.StatusPendiente,
				CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}, nil
		}

		req := httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions,
			strings.NewReader(`{"type":"repocision","solicitanteNombre":"Juan","pieces":[{"talla":"M","cantidad":2}]}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"folio":"JN-REQ-01-24-001"`))
		Expect(body).To(ContainSubstring(`"id":"100"`))
		Expect(received.SolicitanteNombre).To(Equal("Juan"))
		Expect(received.Pieces).To(Equal([]reposition.PieceCreation{{Talla: "M", Cantidad: 2}}))
	})

	t.Run("should create reposition from multipart form with documents", func(t *testing.T) {
		router := buildRouter(testinfra.BuildSession(10, domain.AreaCorte))
		document.StoreUploadsFunc = func(ctx context.Context, fieldName string, files []*multipart.FileHeader) ([]domain.RepositionDocument, error) {
			Expect(fieldName).To(Equal(document.FieldDocuments))
			Expect(len(files)).To(Equal(1))
			return []domain.RepositionDocument{{Filename: "documents-1-2.pdf", OriginalName: files[0].Filename}}, nil
		}
		reposition.CreateRepositionFunc = func(c *reposition.RepositionCreation, docs []domain.RepositionDocument, s *session.Session) (*domain.Reposition, error) {
			Expect(len(docs)).To(Equal(1))
			Expect(docs[0].OriginalName).To(Equal("orden.pdf"))
			return &domain.Reposition{ID: 100, Folio: "JN-REQ-01-24-002", Type: c.Type}, nil
		}

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		Expect(writer.WriteField("repositionData", `{"type":"reproceso","solicitanteNombre":"Ana","noSolicitud":"1",`+
			`"causanteDano":"x","descripcionSuceso":"y","urgencia":"urgente","volverHacer":"z","materialesImplicados":"w"}`)).To(BeNil())
		part, err := writer.CreateFormFile("documents", "orden.pdf")
		Expect(err).To(BeNil())
		_, err = part.Write([]byte("%PDF"))
		Expect(err).To(BeNil())
		Expect(writer.Close()).To(BeNil())

		req := httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions, body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		status, resp, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(resp).To(ContainSubstring(`"folio":"JN-REQ-01-24-002"`))
	})

	t.Run("should reject invalid multipart payload before storing files", func(t *testing.T) {
		router := buildRouter(testinfra.BuildSession(10, domain.AreaCorte))
		document.StoreUploadsFunc = func(ctx context.Context, fieldName string, files []*multipart.FileHeader) ([]domain.RepositionDocument, error) {
			t.Fatal("files must not be stored")
			return nil, nil
		}

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		Expect(writer.WriteField("repositionData", `{"type":"repocision"}`)).To(BeNil())
		Expect(writer.Close()).To(BeNil())

		req := httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions, body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}

func TestRepositionLifecycleAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should restrict approval to deciding areas", func(t *testing.T) {
		reposition.ApproveRepositionFunc = func(id types.ID, req reposition.ApprovalRequest, s *session.Session) (*domain.Reposition, error) {
			Expect(id).To(Equal(types.ID(100)))
			Expect(req.Action).To(Equal(domain.StatusAprobado))
			return &domain.Reposition{ID: id, Status: req.Action}, nil
		}

		req := httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions+"/100/approval", strings.NewReader(`{"action":"aprobado"}`))
		status, body, _ := testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaCorte)))
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden","data":null}`))

		req = httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions+"/100/approval", strings.NewReader(`{"action":"aprobado"}`))
		status, body, _ = testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaOperaciones)))
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"status":"aprobado"`))
	})

	t.Run("should reject bad ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, repositionrest.PathRepositions+"/bad", nil)
		status, body, _ := testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaCorte)))
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param","message":"invalid id 'bad'","data":null}`))
	})

	t.Run("should request transfer from the area of the user", func(t *testing.T) {
		consumo := 2.5
		reposition.RequestTransferFunc = func(id types.ID, fromArea domain.Area, req reposition.TransferRequest, s *session.Session) (*domain.RepositionTransfer, error) {
			Expect(fromArea).To(Equal(domain.AreaCorte))
			Expect(req).To(Equal(reposition.TransferRequest{ToArea: domain.AreaBordado, ConsumoTela: &consumo}))
			return &domain.RepositionTransfer{ID: 5, RepositionID: id, FromArea: fromArea, ToArea: req.ToArea, Status: domain.TransferPending}, nil
		}
		req := httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions+"/100/transfer", strings.NewReader(`{"toArea":"bordado","consumoTela":2.5}`))
		status, body, _ := testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaCorte)))
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"status":"pending"`))

		req = httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions+"/100/transfer", strings.NewReader(`{}`))
		status, _, _ = testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaCorte)))
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should process transfer and map state errors", func(t *testing.T) {
		reposition.ProcessTransferFunc = func(id types.ID, action domain.TransferStatus, s *session.Session) (*domain.RepositionTransfer, error) {
			return nil, bizerror.InvalidState("transfer 5 was already accepted")
		}
		req := httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions+"/transfers/5/process", strings.NewReader(`{"action":"accepted"}`))
		status, body, _ := testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaBordado)))
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(MatchJSON(`{"code":"common.invalid_state","message":"transfer 5 was already accepted","data":null}`))
	})

	t.Run("should complete with or without body", func(t *testing.T) {
		reposition.CompleteRepositionFunc = func(id types.ID, req reposition.CompletionRequest, s *session.Session) (*reposition.CompletionResult, error) {
			return &reposition.CompletionResult{Outcome: reposition.OutcomeApprovalRequested, Reposition: &domain.Reposition{ID: id}}, nil
		}
		req := httptest.NewRequest(http.MethodPost, repositionrest.PathRepositions+"/100/complete", nil)
		status, body, _ := testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaCalidad)))
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"outcome":"approval_requested"`))
	})

	t.Run("should restrict deletion to admin and envios", func(t *testing.T) {
		var reason string
		reposition.DeleteRepositionFunc = func(id types.ID, req reposition.DeletionRequest, s *session.Session) error {
			reason = req.Reason
			return nil
		}
		req := httptest.NewRequest(http.MethodDelete, repositionrest.PathRepositions+"/100", strings.NewReader(`{"reason":"pedido duplicado"}`))
		status, _, _ := testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaCorte)))
		Expect(status).To(Equal(http.StatusForbidden))

		req = httptest.NewRequest(http.MethodDelete, repositionrest.PathRepositions+"/100", strings.NewReader(`{"reason":"pedido duplicado"}`))
		status, _, _ = testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaEnvios)))
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(reason).To(Equal("pedido duplicado"))
	})
}

func TestQueryRepositionsAPI(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should serve listings", func(t *testing.T) {
		router := buildRouter(testinfra.BuildSession(1, domain.AreaAdmin))
		reposition.QueryRepositionsFunc = func(area domain.Area, s *session.Session) ([]domain.Reposition, error) {
			Expect(area).To(Equal(domain.AreaCorte))
			return []domain.Reposition{{ID: 1, Folio: "JN-REQ-01-24-001"}}, nil
		}
		reposition.QueryAllRepositionsFunc = func(includeDeleted bool, s *session.Session) ([]domain.Reposition, error) {
			Expect(includeDeleted).To(BeTrue())
			return []domain.Reposition{}, nil
		}
		reposition.CountPendingFunc = func(s *session.Session) (int, error) {
			return 3, nil
		}

		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, repositionrest.PathRepositions+"?area=corte", nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"folio":"JN-REQ-01-24-001"`))

		status, body, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, repositionrest.PathRepositions+"/all?includeDeleted=true", nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`[]`))

		status, body, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, repositionrest.PathRepositions+"/pending-count", nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"count":3}`))
	})

	t.Run("should serve almacen board to almacen only", func(t *testing.T) {
		reposition.QueryAlmacenRepositionsFunc = func(s *session.Session) ([]reposition.AlmacenReposition, error) {
			return []reposition.AlmacenReposition{{ID: 1, Folio: "JN-REQ-01-24-001", IsPaused: true}}, nil
		}
		status, _, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, repositionrest.PathAlmacen, nil),
			buildRouter(testinfra.BuildSession(1, domain.AreaCorte)))
		Expect(status).To(Equal(http.StatusForbidden))

		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, repositionrest.PathAlmacen, nil),
			buildRouter(testinfra.BuildSession(1, domain.AreaAlmacen)))
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"isPaused":true`))
	})

	t.Run("should pause with reason", func(t *testing.T) {
		reposition.PauseRepositionFunc = func(id types.ID, req reposition.PauseRequest, s *session.Session) (*domain.RepositionMaterial, error) {
			return &domain.RepositionMaterial{RepositionID: id, IsPaused: true, PauseReason: req.Reason}, nil
		}
		req := httptest.NewRequest(http.MethodPost, repositionrest.PathAlmacen+"/7/pause", strings.NewReader(`{"reason":"sin tela"}`))
		status, body, _ := testinfra.ExecuteRequest(req, buildRouter(testinfra.BuildSession(1, domain.AreaAlmacen)))
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"pauseReason":"sin tela"`))
	})
}
