package indices

import (
	"garmentflow/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	PathIndexRequests = "/v1/index-requests"
)

// SyncRequestResult answers a manual sync request with the sync state right after it.
type SyncRequestResult struct {
	Scheduled bool              `json:"scheduled"`
	Status    *SyncStatusReport `json:"status"`
}

// RegisterIndicesRestAPI serves the manual full sync trigger and its status, admin only.
func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleSyncRequest)
	g.GET("", handleSyncStatus)
}

func handleSyncRequest(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	scheduled, err := ScheduleNewSyncRunFunc(s)
	if err != nil {
		panic(err)
	}
	status, err := SyncStatusFunc(s)
	if err != nil {
		panic(err)
	}
	code := http.StatusOK
	if scheduled {
		code = http.StatusAccepted
	}
	c.JSON(code, &SyncRequestResult{Scheduled: scheduled, Status: status})
}

func handleSyncStatus(c *gin.Context) {
	status, err := SyncStatusFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, status)
}
