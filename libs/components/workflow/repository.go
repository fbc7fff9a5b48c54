package workflow

import (
	"context"

	"gorm.io/gorm"
)

// Page is one page of templates, newest first.
type Page struct {
	Items    []Template `json:"items"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

// Repository defines persistence operations for workflow templates. Update
// replaces the whole record, including the full step list.
type Repository interface {
	List(ctx context.Context, page, pageSize int) (Page, error)
	Create(ctx context.Context, entity *Template) error
	Find(ctx context.Context, id string) (*Template, error)
	Update(ctx context.Context, id string, entity *Template) (*Template, error)
	Delete(ctx context.Context, id string) error
}

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// GormRepository implements Repository using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository constructs a repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// NormalizePage clamps paging input: pages start at 1 and the size is
// between 1 and maxPageSize.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// List returns one page of templates ordered by last update.
func (r *GormRepository) List(ctx context.Context, page, pageSize int) (Page, error) {
	page, pageSize = NormalizePage(page, pageSize)
	out := Page{Page: page, PageSize: pageSize, Items: []Template{}}

	if err := r.db.WithContext(ctx).Model(&Template{}).Count(&out.Total).Error; err != nil {
		return Page{}, err
	}
	if out.Total == 0 {
		return out, nil
	}

	err := r.db.WithContext(ctx).Order("updated_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&out.Items).Error
	if err != nil {
		return Page{}, err
	}
	return out, nil
}

// Create persists a template; the id is assigned in BeforeCreate.
func (r *GormRepository) Create(ctx context.Context, entity *Template) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// Find returns a template by ID.
func (r *GormRepository) Find(ctx context.Context, id string) (*Template, error) {
	var entity Template
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// Update overwrites every column of the template with id. There is no
// version check: the last writer wins.
func (r *GormRepository) Update(ctx context.Context, id string, entity *Template) (*Template, error) {
	var existing Template
	tx := r.db.WithContext(ctx)
	if err := tx.First(&existing, "id = ?", id).Error; err != nil {
		return nil, err
	}

	entity.ID = existing.ID
	entity.CreatedAt = existing.CreatedAt
	if err := tx.Save(entity).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

// Delete removes a template.
func (r *GormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Template{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
