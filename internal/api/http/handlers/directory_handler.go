package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/org-directory/internal/api/dto"
	"github.com/spec-kit/org-directory/internal/service"
)

// DirectoryHandler renders the organization view.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Get handles GET /directory.
func (h *DirectoryHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	dir, err := h.directory.Directory(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DirectoryResponse{
		Admins:    dto.NewUserResponses(dir.Admins),
		Employees: dto.NewUserResponses(dir.Employees),
		Teams:     dto.NewTeamResponses(dir.Teams),
	}})
}
