package search

import (
	"garmentflow/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	PathRepositionSearch = "/v1/repositions/search"
)

func RegisterSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRepositionSearch, middleWares...)
	g.GET("", handleSearch)
}

func handleSearch(c *gin.Context) {
	result, err := SearchRepositionsFunc(c.Query("q"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
