package timer

import (
	"errors"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// RegisterTimersRestAPI serves the timers of the area of the session user.
func RegisterTimersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/repositions", middleWares...)
	g.POST(":id/timer/start", handleStart)
	g.POST(":id/timer/stop", handleStop)
	g.POST(":id/timer/manual", handleManual)
	g.GET(":id/timer", handleGet)
	g.GET(":id/timers", handleList)
}

func parseID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}

// TimerStarting names the area of the timer. Only admin may start a timer for another area.
type TimerStarting struct {
	Area domain.Area `json:"area"`
}

func startingArea(c *gin.Context, s *session.Session) domain.Area {
	area := s.Identity.Area
	if c.Request.ContentLength == 0 {
		return area
	}
	req := TimerStarting{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if req.Area == "" || req.Area == area {
		return area
	}
	if !req.Area.Valid() {
		panic(bizerror.BadParam("unknown area '" + string(req.Area) + "'"))
	}
	if !s.InArea(domain.AreaAdmin) {
		panic(bizerror.ErrForbidden)
	}
	return req.Area
}

func handleStart(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	id := parseID(c)
	t, err := StartTimerFunc(id, startingArea(c, s), s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, t)
}

func handleStop(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	r, err := StopTimerFunc(parseID(c), s.Identity.Area, s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleManual(c *gin.Context) {
	id := parseID(c)
	req := ManualTime{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s := session.ExtractSessionFromGinContext(c)
	t, err := SetManualTimeFunc(id, s.Identity.Area, req, s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, t)
}

func handleGet(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	t, err := GetTimerFunc(parseID(c), s.Identity.Area, s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, t)
}

func handleList(c *gin.Context) {
	r, err := ListTimersFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}
