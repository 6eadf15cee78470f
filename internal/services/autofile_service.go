package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"creativedesk/internal/models"
)

// AutoFileService maps classification output onto CRM company and project
// records, creating or reusing them idempotently, and links session assets
// to them.
type AutoFileService struct {
	crm      *CRMService
	sessions *SessionService
}

// NewAutoFileService creates a new auto-filer
func NewAutoFileService(crm *CRMService, sessions *SessionService) *AutoFileService {
	return &AutoFileService{crm: crm, sessions: sessions}
}

// FileAsset files the triggering asset, and every other asset in the session,
// under the classified company and project. A nil classification or one
// without a company name files nothing and returns nil, nil, nil. Creation
// and linking errors propagate; the classifier treats them as non-fatal.
func (s *AutoFileService) FileAsset(classification *models.ClassificationResult, assetID string, session *models.Session) (*models.Company, *models.Project, error) {
	companyName := strings.TrimSpace(classification.CompanyName())
	if companyName == "" {
		return nil, nil, nil
	}

	projectName := ""
	projectType := "campaign"
	if classification.Project != nil {
		projectName = strings.TrimSpace(classification.Project.Name)
		if classification.Project.Type != "" {
			projectType = classification.Project.Type
		}
	}
	if projectName == "" {
		projectName = fmt.Sprintf("%s assets %s", companyName, time.Now().Format("2006-01-02"))
	}

	tags := append([]string{"ai-generated"}, classification.Tags...)

	company, err := s.crm.FindCompanyByName(companyName)
	if err != nil {
		return nil, nil, fmt.Errorf("company lookup failed: %w", err)
	}
	if company == nil {
		website := classification.Company.Website
		description := ""
		if classification.Validation != nil {
			if classification.Validation.Website != "" {
				website = classification.Validation.Website
			}
			description = classification.Validation.Description
		}
		company, err = s.crm.CreateCompany(companyName, website, description, classification.Industry, tags)
		if err != nil {
			return nil, nil, fmt.Errorf("company create failed: %w", err)
		}
	}

	project, err := s.crm.FindProjectByName(company.ID, projectName)
	if err != nil {
		return nil, nil, fmt.Errorf("project lookup failed: %w", err)
	}
	if project == nil {
		project, err = s.crm.CreateProject(company.ID, projectName, projectType, tags)
		if err != nil {
			return nil, nil, fmt.Errorf("project create failed: %w", err)
		}
	}

	if err := s.crm.LinkAssetToCompany(assetID, company.ID); err != nil {
		return nil, nil, err
	}
	if err := s.crm.LinkAssetToProject(assetID, project.ID); err != nil {
		return nil, nil, err
	}

	// File the whole session under the same company/project, not just the
	// triggering asset.
	for _, id := range s.sessions.AssetIDs(session) {
		if err := s.crm.LinkAssetToCompany(id, company.ID); err != nil {
			return nil, nil, err
		}
		if err := s.crm.LinkAssetToProject(id, project.ID); err != nil {
			return nil, nil, err
		}
	}

	s.sessions.Annotate(session, func(meta *models.SessionMeta) {
		meta.DetectedCompany = company.Name
		meta.DetectedProject = project.Name
		meta.CompanyID = company.ID
		meta.ProjectID = project.ID
	})

	log.Printf("🗂️ [AUTOFILE] Filed asset %s under company '%s' / project '%s'", assetID, company.Name, project.Name)
	return company, project, nil
}
