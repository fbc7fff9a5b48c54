package directory

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository is the read side of the department and license directory.
type Repository interface {
	ListDepartments(ctx context.Context, search string) ([]Department, error)
	ListLicenses(ctx context.Context, licenseType string) ([]License, error)
	FindLicense(ctx context.Context, id string) (*License, error)
}

// GormRepository reads the directory via GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new directory repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// ListDepartments returns departments ordered by name, optionally filtered
// by a case-insensitive name search.
func (r *GormRepository) ListDepartments(ctx context.Context, search string) ([]Department, error) {
	query := r.db.WithContext(ctx).Model(&Department{}).Order("name ASC")
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	var out []Department
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListLicenses returns licenses ordered by name, optionally filtered by type.
func (r *GormRepository) ListLicenses(ctx context.Context, licenseType string) ([]License, error) {
	query := r.db.WithContext(ctx).Model(&License{}).Order("name ASC")
	if licenseType = strings.TrimSpace(licenseType); licenseType != "" {
		query = query.Where("type = ?", licenseType)
	}

	var out []License
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindLicense returns a license by ID.
func (r *GormRepository) FindLicense(ctx context.Context, id string) (*License, error) {
	var entity License
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// DepartmentNames lists every department name in display order.
func (r *GormRepository) DepartmentNames(ctx context.Context) ([]string, error) {
	return DepartmentNames(ctx, r)
}

// LicenseSummary returns the short form of the license with id.
func (r *GormRepository) LicenseSummary(ctx context.Context, id string) (map[string]any, error) {
	return LicenseSummary(ctx, r, id)
}

// DepartmentNames lists the department names known to repo.
func DepartmentNames(ctx context.Context, repo Repository) ([]string, error) {
	departments, err := repo.ListDepartments(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(departments))
	for _, d := range departments {
		names = append(names, d.Name)
	}
	return names, nil
}

// LicenseSummary looks up a license in repo and returns its short form.
func LicenseSummary(ctx context.Context, repo Repository, id string) (map[string]any, error) {
	license, err := repo.FindLicense(ctx, id)
	if err != nil {
		return nil, err
	}
	return license.Summary(), nil
}

// IsNotFound indicates whether the error is gorm.ErrRecordNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
