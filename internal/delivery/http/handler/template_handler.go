package handler

import (
	"github.com/gofiber/fiber/v2"

	"signit-esign/internal/usecase"
)

type TemplateHandler struct {
	provisioner usecase.DocumentProvisioner
}

func NewTemplateHandler(provisioner usecase.DocumentProvisioner) *TemplateHandler {
	return &TemplateHandler{provisioner: provisioner}
}

// ListTemplates godoc
// @Summary List contract templates
// @Description Contract types that have a static template on disk
// @Tags templates
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/templates [get]
func (h *TemplateHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.provisioner.ListTemplates(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"templates": templates})
}
