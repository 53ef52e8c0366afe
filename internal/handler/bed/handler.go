package bed

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/handler"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/middleware"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateBedRequest) (*model.Bed, error)
	List(ctx context.Context) ([]*model.BedListItem, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Bed, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BedStatus) (*model.Bed, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context) ([]*model.WardSummary, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the bed routes. Reads need staff or admin, edits
// need admin.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	beds := r.Group("/beds")
	beds.Use(auth.Authenticate(), auth.RequireRole(model.RoleStaff, model.RoleAdmin))
	{
		beds.GET("", h.List)
		beds.GET("/summary", h.Summary)
		beds.GET("/:id", h.Get)

		admin := beds.Group("", auth.RequireRole(model.RoleAdmin))
		admin.POST("", h.Create)
		admin.PUT("/:id", h.UpdateStatus)
		admin.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateBedRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	bed, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, "bed created", bed)
}

func (h *Handler) List(c *gin.Context) {
	beds, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, beds)
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, summary)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	bed, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, bed)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateBedStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	bed, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusOK, "bed updated", bed)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusOK, "bed deleted", nil)
}
