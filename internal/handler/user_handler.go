package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-roster-api/internal/models"
	"github.com/noah-isme/school-roster-api/pkg/response"
)

type userProvisioner interface {
	Provision(ctx context.Context, req models.CreateUserRequest) (*models.UserProfile, error)
}

// UserHandler handles account provisioning.
type UserHandler struct {
	service userProvisioner
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userProvisioner) *UserHandler {
	return &UserHandler{service: svc}
}

// Create godoc
// @Summary Create or replace account
// @Description Admin only. An existing account with the same email is overwritten
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateUserRequest true "Account payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := bindJSON(c, &req, "invalid user payload"); err != nil {
		response.Error(c, err)
		return
	}
	profile, err := h.service.Provision(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}
