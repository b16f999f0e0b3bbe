package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/common"
	userDTO "github.com/kgwiazdak/sprint-planning-copilot/internal/adapter/dto/user"
	"github.com/kgwiazdak/sprint-planning-copilot/internal/domain/repositories"
)

// User handles user HTTP requests
type User struct {
	users repositories.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(users repositories.UserRepository) *User {
	return &User{users: users}
}

// List handles GET /users
func (h *User) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context())
	if err != nil {
		return HandleError(c, err)
	}

	out := make([]*userDTO.Response, 0, len(users))
	for _, u := range users {
		out = append(out, userDTO.FromEntity(u))
	}
	return c.JSON(http.StatusOK, common.ListResponse{Data: out})
}
