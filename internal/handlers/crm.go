package handlers

import (
	"strconv"

	"creativedesk/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CRMHandler handles company and project read requests
type CRMHandler struct {
	crm *services.CRMService
}

// NewCRMHandler creates a new CRM handler
func NewCRMHandler(crm *services.CRMService) *CRMHandler {
	return &CRMHandler{crm: crm}
}

// ListCompanies returns all companies
func (h *CRMHandler) ListCompanies(c *fiber.Ctx) error {
	companies, err := h.crm.ListCompanies()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch companies",
		})
	}

	return c.JSON(fiber.Map{
		"companies": companies,
		"count":     len(companies),
	})
}

// ListProjects returns all projects for a company
func (h *CRMHandler) ListProjects(c *fiber.Ctx) error {
	companyID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid company ID",
		})
	}

	company, err := h.crm.GetCompanyByID(companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch company",
		})
	}
	if company == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Company not found",
		})
	}

	projects, err := h.crm.ListProjects(companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch projects",
		})
	}

	return c.JSON(fiber.Map{
		"company":  company,
		"projects": projects,
		"count":    len(projects),
	})
}
