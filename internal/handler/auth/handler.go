package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/handler"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/middleware"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/httputil"
)

type Service interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error)
	RegisterStaff(ctx context.Context, req *model.RegisterRequest) (*model.AccountView, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	group := r.Group("/auth")
	{
		group.POST("/register", h.Register)
		group.POST("/login", h.Login)
		group.POST("/register-staff", auth.Authenticate(), auth.RequireRole(model.RoleAdmin), h.RegisterStaff)
		group.GET("/me", auth.Authenticate(), h.Me)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, "registered", resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusOK, "Login Successful", resp)
}

func (h *Handler) RegisterStaff(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	account, err := h.svc.RegisterStaff(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, "account created", gin.H{"user": account})
}

// Me returns the authenticated account.
func (h *Handler) Me(c *gin.Context) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.NewErrorResponse("not authenticated"))
		return
	}
	httputil.RespondWithSuccess(c, account.View())
}
