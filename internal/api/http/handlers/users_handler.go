package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/api/dto"
	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/domain"
	"github.com/spec-kit/org-directory/internal/service"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// UsersHandler exposes user management and the own-profile endpoint.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user.Public())})
}

// CreateEmployee handles POST /users/employees.
func (h *UsersHandler) CreateEmployee(c *fiber.Ctx) error {
	return h.create(c, domain.RoleEmployee)
}

// CreateAdmin handles POST /users/admins.
func (h *UsersHandler) CreateAdmin(c *fiber.Ctx) error {
	return h.create(c, domain.RoleAdmin)
}

func (h *UsersHandler) create(c *fiber.Ctx, role domain.Role) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := dto.Decode(c.Body(), &req); err != nil {
		return err
	}

	user, err := h.users.Create(c.UserContext(), actor, service.UserInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Designation: req.Designation,
	}, role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(user.Public())})
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := dto.Decode(c.Body(), &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.UserContext(), actor, c.Params("id"), userPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user.Public())})
}

// UpdateProfile handles PATCH /profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := dto.Decode(c.Body(), &req); err != nil {
		return err
	}

	patch := userPatch(req.UpdateUserRequest)
	patch.CurrentPassword = req.CurrentPassword
	user, err := h.users.UpdateProfile(c.UserContext(), actor, patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user.Public())})
}

// Delete handles DELETE /users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func userPatch(req dto.UpdateUserRequest) service.UserPatch {
	return service.UserPatch{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Designation: req.Designation,
	}
}

func actorFrom(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Actor, nil
}
