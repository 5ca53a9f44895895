package document

import (
	"errors"
	"garmentflow/bizerror"
	"garmentflow/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var PathFiles = "/v1/files"

func RegisterDocumentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.POST("/v1/repositions/:id/documents", append(middleWares, handleAttachDocuments)...)

	g := r.Group(PathFiles, middleWares...)
	g.GET(":filename", handleDownload)
}

func handleAttachDocuments(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	form, err := c.MultipartForm()
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	docs, err := AttachDocumentsFunc(id, form.File[FieldDocuments], session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, docs)
}

func handleDownload(c *gin.Context) {
	doc, r, err := OpenDocumentFunc(c.Param("filename"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	defer r.Close()
	c.DataFromReader(http.StatusOK, doc.Size, doc.ContentType, r, map[string]string{
		"Content-Disposition": `attachment; filename="` + doc.OriginalName + `"`,
	})
}
