package report

import (
	"garmentflow/domain"
	"garmentflow/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	PathExport = "/v1/repositions/export"
)

func RegisterReportRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathExport, middleWares...)
	g.GET("", session.AreaFilter(domain.AreaAdmin, domain.AreaEnvios), handleExport)
}

func handleExport(c *gin.Context) {
	includeDeleted := c.Query("includeDeleted") == "true"
	buf, err := ExportRepositionsFunc(includeDeleted, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Header("Content-Disposition", `attachment; filename="`+FileName(time.Now())+`"`)
	c.Data(http.StatusOK, ContentType, buf.Bytes())
}
