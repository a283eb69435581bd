package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/application"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/service"
	vo "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/valueobject"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/response"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/validation"
)

// UserUseCases is the part of the application service the handlers call.
type UserUseCases interface {
	CreateUser(ctx context.Context, in userapp.CreateUserInput) (*userapp.UserResponse, error)
	FindAllUsers(ctx context.Context, in userapp.PaginationInput) (*userapp.PaginatedResponse, error)
	FindUserByID(ctx context.Context, id string) (*userapp.UserResponse, error)
	UpdateUser(ctx context.Context, id string, in userapp.UpdateUserInput) (*userapp.UserResponse, error)
	DeleteUser(ctx context.Context, id string) (*userapp.DeleteResult, error)
	GetUserStatistics(ctx context.Context) (service.UserStatistics, error)
	SearchUsers(ctx context.Context, query string, size int) ([]userapp.UserResponse, error)
}

type UserHandler struct {
	Svc    UserUseCases
	Logger logrus.FieldLogger
}

func NewUserHandler(svc UserUseCases, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,min=1,max=100"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req userapp.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", errBody("INVALID_PAYLOAD", validation.ToDetails(err)))
		return
	}
	u, err := h.Svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user created", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	var q userapp.PaginationInput
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", errBody("INVALID_QUERY", validation.ToDetails(err)))
		return
	}
	page, err := h.Svc.FindAllUsers(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, page.Data, "users retrieved", page.Meta)
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.FindUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user retrieved", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req userapp.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", errBody("INVALID_PAYLOAD", validation.ToDetails(err)))
		return
	}
	u, err := h.Svc.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user updated", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	res, err := h.Svc.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, res.Message, nil)
}

func (h *UserHandler) Stats(c *gin.Context) {
	stats, err := h.Svc.GetUserStatistics(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats, "user statistics", nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", errBody("INVALID_QUERY", validation.ToDetails(err)))
		return
	}
	users, err := h.Svc.SearchUsers(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, users, "search results", map[string]any{"count": len(users)})
}

// writeError maps use-case errors onto HTTP statuses.
func (h *UserHandler) writeError(c *gin.Context, err error) {
	var (
		verr     *vo.ValidationError
		notFound *userapp.NotFoundError
		conflict *userapp.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, verr.Message, errBody(string(verr.Kind), map[string]string{verr.Field: verr.Message}))
	case errors.As(err, &notFound):
		response.Error[any](c, http.StatusNotFound, notFound.Error(), errBody("NOT_FOUND", nil))
	case errors.As(err, &conflict):
		response.Error[any](c, http.StatusConflict, conflict.Error(), errBody("CONFLICT", map[string]string{conflict.Field: "already taken"}))
	default:
		_ = c.Error(err)
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", errBody("INTERNAL", nil))
	}
}

func errBody(code string, details map[string]string) response.ErrorBody {
	return response.ErrorBody{Code: code, Details: details}
}

// Health is the liveness check.
func Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil)
}
