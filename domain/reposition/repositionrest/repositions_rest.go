package repositionrest

import (
	"encoding/json"
	"errors"
	"garmentflow/bizerror"
	"garmentflow/document"
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/session"
	"net/http"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathRepositions = "/v1/repositions"
	PathAlmacen     = "/v1/almacen/repositions"

	deciders = []domain.Area{domain.AreaOperaciones, domain.AreaAdmin, domain.AreaEnvios}
)

const fieldRepositionData = "repositionData"

type PendingCount struct {
	Count int `json:"count"`
}

func RegisterRepositionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRepositions, middleWares...)
	g.GET("", handleQuery)
	g.POST("", handleCreate)
	g.GET("all", handleQueryAll)
	g.GET("pending-count", handleCountPending)
	g.GET("transfers/pending", handleQueryPendingTransfers)
	g.POST("transfers/:id/process", handleProcessTransfer)

	g.GET(":id", handleDetail)
	g.DELETE(":id", session.AreaFilter(domain.AreaAdmin, domain.AreaEnvios), handleDelete)
	g.GET(":id/history", handleHistory)
	g.GET(":id/pieces", handlePieces)
	g.GET(":id/products", handleProducts)
	g.GET(":id/documents", handleDocuments)
	g.POST(":id/transfer", handleRequestTransfer)
	g.POST(":id/approval", session.AreaFilter(deciders...), handleApprove)
	g.POST(":id/complete", handleComplete)

	a := r.Group(PathAlmacen, append(middleWares, session.AreaFilter(domain.AreaAlmacen))...)
	a.GET("", handleQueryAlmacen)
	a.POST(":id/pause", handlePause)
	a.POST(":id/resume", handleResume)
	a.GET(":id/materials", handleQueryMaterial)
	a.POST(":id/materials", handleUpdateMaterialStatus)
}

func parseID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}
	return id
}

func handleQuery(c *gin.Context) {
	r, err := reposition.QueryRepositionsFunc(domain.Area(c.Query("area")), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleQueryAll(c *gin.Context) {
	r, err := reposition.QueryAllRepositionsFunc(c.Query("includeDeleted") == "true", session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleCountPending(c *gin.Context) {
	count, err := reposition.CountPendingFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &PendingCount{Count: count})
}

// handleCreate accepts a JSON body, or a multipart form carrying the JSON in repositionData
// and up to five files in documents.
func handleCreate(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	creation := reposition.RepositionCreation{}
	var docs []domain.RepositionDocument

	if strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm) {
		form, err := c.MultipartForm()
		if err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		data := form.Value[fieldRepositionData]
		if len(data) == 0 {
			panic(bizerror.BadParam(fieldRepositionData + " is required"))
		}
		if err := json.Unmarshal([]byte(data[0]), &creation); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		if err := creation.Validate(); err != nil {
			panic(err)
		}
		docs, err = document.StoreUploadsFunc(s.Context, document.FieldDocuments, form.File[document.FieldDocuments])
		if err != nil {
			panic(err)
		}
	} else if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	r, err := reposition.CreateRepositionFunc(&creation, docs, s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, r)
}

func handleDetail(c *gin.Context) {
	r, err := reposition.DetailRepositionFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleDelete(c *gin.Context) {
	id := parseID(c)
	req := reposition.DeletionRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := reposition.DeleteRepositionFunc(id, req, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleHistory(c *gin.Context) {
	r, err := reposition.ListHistoryFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handlePieces(c *gin.Context) {
	r, err := reposition.ListPiecesFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleProducts(c *gin.Context) {
	r, err := reposition.ListProductsFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleDocuments(c *gin.Context) {
	r, err := reposition.ListDocumentsFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleRequestTransfer(c *gin.Context) {
	id := parseID(c)
	req := reposition.TransferRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	s := session.ExtractSessionFromGinContext(c)
	r, err := reposition.RequestTransferFunc(id, s.Identity.Area, req, s)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, r)
}

func handleProcessTransfer(c *gin.Context) {
	id := parseID(c)
	req := reposition.TransferProcessing{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	r, err := reposition.ProcessTransferFunc(id, req.Action, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleQueryPendingTransfers(c *gin.Context) {
	r, err := reposition.QueryPendingTransfersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleApprove(c *gin.Context) {
	id := parseID(c)
	req := reposition.ApprovalRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	r, err := reposition.ApproveRepositionFunc(id, req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleComplete(c *gin.Context) {
	id := parseID(c)
	req := reposition.CompletionRequest{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
	}
	r, err := reposition.CompleteRepositionFunc(id, req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleQueryAlmacen(c *gin.Context) {
	r, err := reposition.QueryAlmacenRepositionsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handlePause(c *gin.Context) {
	id := parseID(c)
	req := reposition.PauseRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	r, err := reposition.PauseRepositionFunc(id, req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleResume(c *gin.Context) {
	r, err := reposition.ResumeRepositionFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleQueryMaterial(c *gin.Context) {
	r, err := reposition.QueryMaterialFunc(parseID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}

func handleUpdateMaterialStatus(c *gin.Context) {
	id := parseID(c)
	req := reposition.MaterialStatusUpdating{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	r, err := reposition.UpdateMaterialStatusFunc(id, req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, r)
}
