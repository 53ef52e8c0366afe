package patient

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
	Admit(ctx context.Context, req *model.AdmitRequest) (*model.Patient, *model.Bed, error)
	Discharge(ctx context.Context, patientID uuid.UUID) error
	Transfer(ctx context.Context, patientID uuid.UUID, req *model.TransferRequest) (*model.Patient, *model.Bed, error)
	ListPatients(ctx context.Context) ([]*model.PatientWithBed, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.PatientWithBed, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the patient routes; every route needs staff or admin.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	patients := r.Group("/patients")
	patients.Use(auth.Authenticate(), auth.RequireRole(model.RoleStaff, model.RoleAdmin))
	{
		patients.POST("/admit", h.Admit)
		patients.DELETE("/discharge/:id", h.Discharge)
		patients.PUT("/transfer/:id", h.Transfer)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
	}
}

func (h *Handler) Admit(c *gin.Context) {
	var req model.AdmitRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	patient, bed, err := h.service.Admit(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusCreated, "patient admitted", model.AdmitResponse{Patient: patient, Bed: bed})
}

func (h *Handler) Discharge(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Discharge(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusOK, "Patient discharged and bed released", nil)
}

func (h *Handler) Transfer(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	// The body is optional: no target means any available bed.
	var req model.TransferRequest
	if c.Request.ContentLength != 0 && !handler.BindJSON(c, &req) {
		return
	}

	patient, newBed, err := h.service.Transfer(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithStatus(c, http.StatusOK, "patient transferred", model.TransferResponse{Patient: patient, NewBed: newBed})
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	patient, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}
