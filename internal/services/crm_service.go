package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"creativedesk/internal/database"
	"creativedesk/internal/models"
)

// CRMService owns the company and project records that auto-filing creates,
// plus the asset links. Name matching is case-insensitive, whitespace-trimmed
// exact equality; no fuzzy matching.
type CRMService struct {
	db *database.DB
}

// NewCRMService creates a new CRM service
func NewCRMService(db *database.DB) *CRMService {
	return &CRMService{db: db}
}

// FindCompanyByName looks up a company by normalized name. Missing is nil, nil.
func (s *CRMService) FindCompanyByName(name string) (*models.Company, error) {
	row := s.db.QueryRow(`
		SELECT id, name, website, description, industry, tags, created_at, updated_at
		FROM companies
		WHERE LOWER(TRIM(name)) = LOWER(TRIM(?))
	`, name)
	return scanCompany(row)
}

// GetCompanyByID returns a company by ID. Missing is nil, nil.
func (s *CRMService) GetCompanyByID(id int64) (*models.Company, error) {
	row := s.db.QueryRow(`
		SELECT id, name, website, description, industry, tags, created_at, updated_at
		FROM companies
		WHERE id = ?
	`, id)
	return scanCompany(row)
}

// CreateCompany inserts a new company record.
func (s *CRMService) CreateCompany(name, website, description, industry string, tags []string) (*models.Company, error) {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO companies (name, website, description, industry, tags)
		VALUES (?, ?, ?, ?, ?)
	`, strings.TrimSpace(name), website, description, industry, string(tagsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted ID: %w", err)
	}

	log.Printf("✅ [CRM] Created company '%s' (ID %d)", strings.TrimSpace(name), id)
	return s.GetCompanyByID(id)
}

// ListCompanies returns all companies ordered by name.
func (s *CRMService) ListCompanies() ([]models.Company, error) {
	rows, err := s.db.Query(`
		SELECT id, name, website, description, industry, tags, created_at, updated_at
		FROM companies
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		company, err := scanCompanyRows(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *company)
	}
	return companies, nil
}

// FindProjectByName looks up a project by normalized name scoped to a
// company. The same name may exist under different companies. Missing is
// nil, nil.
func (s *CRMService) FindProjectByName(companyID int64, name string) (*models.Project, error) {
	row := s.db.QueryRow(`
		SELECT id, company_id, name, type, tags, created_at, updated_at
		FROM projects
		WHERE company_id = ? AND LOWER(TRIM(name)) = LOWER(TRIM(?))
	`, companyID, name)
	return scanProject(row)
}

// GetProjectByID returns a project by ID. Missing is nil, nil.
func (s *CRMService) GetProjectByID(id int64) (*models.Project, error) {
	row := s.db.QueryRow(`
		SELECT id, company_id, name, type, tags, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// CreateProject inserts a new project linked to a company.
func (s *CRMService) CreateProject(companyID int64, name, projectType string, tags []string) (*models.Project, error) {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	result, err := s.db.Exec(`
		INSERT INTO projects (company_id, name, type, tags)
		VALUES (?, ?, ?, ?)
	`, companyID, strings.TrimSpace(name), projectType, string(tagsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted ID: %w", err)
	}

	log.Printf("✅ [CRM] Created project '%s' under company %d (ID %d)", strings.TrimSpace(name), companyID, id)
	return s.GetProjectByID(id)
}

// ListProjects returns all projects for a company ordered by name.
func (s *CRMService) ListProjects(companyID int64) ([]models.Project, error) {
	rows, err := s.db.Query(`
		SELECT id, company_id, name, type, tags, created_at, updated_at
		FROM projects
		WHERE company_id = ?
		ORDER BY name
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProjectRows(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, nil
}

// LinkAssetToCompany records an asset/company link. Repeat links are no-ops.
func (s *CRMService) LinkAssetToCompany(assetID string, companyID int64) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO company_assets (company_id, asset_id) VALUES (?, ?)
	`, companyID, assetID)
	if err != nil {
		return fmt.Errorf("failed to link asset to company: %w", err)
	}
	return nil
}

// LinkAssetToProject records an asset/project link. Repeat links are no-ops.
func (s *CRMService) LinkAssetToProject(assetID string, projectID int64) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO project_assets (project_id, asset_id) VALUES (?, ?)
	`, projectID, assetID)
	if err != nil {
		return fmt.Errorf("failed to link asset to project: %w", err)
	}
	return nil
}

// CompanyAssetIDs returns the IDs of all assets linked to a company.
func (s *CRMService) CompanyAssetIDs(companyID int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT asset_id FROM company_assets WHERE company_id = ? ORDER BY created_at
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query company assets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan asset link: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row *sql.Row) (*models.Company, error) {
	company, err := scanCompanyFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query company: %w", err)
	}
	return company, nil
}

func scanCompanyRows(rows *sql.Rows) (*models.Company, error) {
	company, err := scanCompanyFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}
	return company, nil
}

func scanCompanyFrom(scanner rowScanner) (*models.Company, error) {
	var c models.Company
	var website, description, industry, tagsJSON sql.NullString
	if err := scanner.Scan(&c.ID, &c.Name, &website, &description, &industry,
		&tagsJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Website = website.String
	c.Description = description.String
	c.Industry = industry.String
	c.Tags = decodeTags(tagsJSON.String)
	return &c, nil
}

func scanProject(row *sql.Row) (*models.Project, error) {
	project, err := scanProjectFrom(row)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	return project, nil
}

func scanProjectRows(rows *sql.Rows) (*models.Project, error) {
	project, err := scanProjectFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return project, nil
}

func scanProjectFrom(scanner rowScanner) (*models.Project, error) {
	var p models.Project
	var projectType, tagsJSON sql.NullString
	if err := scanner.Scan(&p.ID, &p.CompanyID, &p.Name, &projectType, &tagsJSON,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = projectType.String
	p.Tags = decodeTags(tagsJSON.String)
	return &p, nil
}

func decodeTags(tagsJSON string) []string {
	if tagsJSON == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil
	}
	return tags
}
