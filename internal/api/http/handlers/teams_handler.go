package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/api/dto"
	"github.com/spec-kit/org-directory/internal/service"
)

// TeamsHandler exposes team endpoints.
type TeamsHandler struct {
	teams *service.TeamService
}

// NewTeamsHandler constructs handler.
func NewTeamsHandler(teams *service.TeamService) *TeamsHandler {
	return &TeamsHandler{teams: teams}
}

// List handles GET /teams.
func (h *TeamsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	teams, err := h.teams.List(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTeamResponses(teams)})
}

// Get handles GET /teams/:id.
func (h *TeamsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	team, err := h.teams.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTeamResponse(team)})
}

// Create handles POST /teams.
func (h *TeamsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeamRequest
	if err := dto.Decode(c.Body(), &req); err != nil {
		return err
	}
	team, err := h.teams.Create(c.UserContext(), actor, service.TeamInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTeamResponse(team)})
}

// Update handles PATCH /teams/:id.
func (h *TeamsHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTeamRequest
	if err := dto.Decode(c.Body(), &req); err != nil {
		return err
	}
	team, err := h.teams.Update(c.UserContext(), actor, c.Params("id"), service.TeamPatch{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTeamResponse(team)})
}

// ReplaceMembers handles PUT /teams/:id/members.
func (h *TeamsHandler) ReplaceMembers(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMembersRequest
	if err := dto.Decode(c.Body(), &req); err != nil {
		return err
	}
	team, err := h.teams.UpdateMembers(c.UserContext(), actor, c.Params("id"), req.UserIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTeamResponse(team)})
}

// ToggleMember handles POST /teams/:id/members/:userId/toggle.
func (h *TeamsHandler) ToggleMember(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	team, err := h.teams.ToggleMember(c.UserContext(), actor, c.Params("id"), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTeamResponse(team)})
}

// Delete handles DELETE /teams/:id.
func (h *TeamsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.teams.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
