package timer_test

import (
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/domain/timer"
	"garmentflow/session"
	"garmentflow/testinfra"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func buildTimerRouter(s *session.Session) *gin.Engine {
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	timer.RegisterTimersRestAPI(router, testinfra.InjectSession(s))
	return router
}

func TestStartTimerAPI(t *testing.T) {
	RegisterTestingT(t)

	var startedArea domain.Area
	timer.StartTimerFunc = func(id types.ID, area domain.Area, s *session.Session) (*domain.RepositionTimer, error) {
		startedArea = area
		return &domain.RepositionTimer{ID: 7, RepositionID: id, Area: area, UserID: s.Identity.ID, IsRunning: true}, nil
	}
	defer func() { timer.StartTimerFunc = timer.StartTimer }()

	t.Run("should start the timer of the session area without body", func(t *testing.T) {
		startedArea = ""
		router := buildTimerRouter(testinfra.BuildSession(431234567890123456, domain.AreaCorte))
		req := httptest.NewRequest(http.MethodPost, "/v1/repositions/100/timer/start", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(startedArea).To(Equal(domain.AreaCorte))
		Expect(body).To(ContainSubstring(`"userId":"431234567890123456"`))
		Expect(body).To(ContainSubstring(`"repositionId":"100"`))
	})

	t.Run("should accept a body naming the session area", func(t *testing.T) {
		startedArea = ""
		router := buildTimerRouter(testinfra.BuildSession(1, domain.AreaBordado))
		req := httptest.NewRequest(http.MethodPost, "/v1/repositions/100/timer/start", strings.NewReader(`{"area":"bordado"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(startedArea).To(Equal(domain.AreaBordado))
	})

	t.Run("should refuse starting the timer of another area", func(t *testing.T) {
		startedArea = ""
		router := buildTimerRouter(testinfra.BuildSession(1, domain.AreaCorte))
		req := httptest.NewRequest(http.MethodPost, "/v1/repositions/100/timer/start", strings.NewReader(`{"area":"bordado"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(startedArea).To(BeEmpty())
	})

	t.Run("should let admin start the timer of another area", func(t *testing.T) {
		startedArea = ""
		router := buildTimerRouter(testinfra.BuildSession(1, domain.AreaAdmin))
		req := httptest.NewRequest(http.MethodPost, "/v1/repositions/100/timer/start", strings.NewReader(`{"area":"bordado"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(startedArea).To(Equal(domain.AreaBordado))
	})

	t.Run("should reject unknown areas and malformed bodies", func(t *testing.T) {
		startedArea = ""
		router := buildTimerRouter(testinfra.BuildSession(1, domain.AreaAdmin))
		req := httptest.NewRequest(http.MethodPost, "/v1/repositions/100/timer/start", strings.NewReader(`{"area":"cocina"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))

		req = httptest.NewRequest(http.MethodPost, "/v1/repositions/100/timer/start", strings.NewReader(`{"area":`))
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(startedArea).To(BeEmpty())
	})
}
