package workflow

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var templateColumns = []string{
	"id", "name", "description", "license_type", "license_category",
	"license_id", "steps", "is_active", "created_at", "updated_at",
}

func newMockRepository(t *testing.T) (*GormRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewGormRepository(gdb), mock
}

func templateRow(id, name string, updated time.Time) []driver.Value {
	return []driver.Value{
		id, name, "desc", "MILLERS", "PERMIT_AND_LICENSE", nil,
		[]byte(`[{"id":"initial_review","name":"Initial Review","type":"REVIEW","assignedDepartment":"Licensing","nextSteps":[],"conditions":{"onComplete":"","onReject":"reject","onTimeout":"cancel"}}]`),
		true, updated, updated,
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, defaultPageSize},
		{-3, 10, 1, 10},
		{4, 1000, 4, maxPageSize},
		{2, 50, 2, 50},
	}
	for _, tc := range cases {
		page, size := NormalizePage(tc.page, tc.size)
		assert.Equal(t, tc.wantPage, page)
		assert.Equal(t, tc.wantSize, size)
	}
}

func TestGormRepositoryListEmpty(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "workflow_templates"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := repo.List(context.Background(), 0, 0)

	require.NoError(t, err)
	assert.Equal(t, Page{Items: []Template{}, Page: 1, PageSize: defaultPageSize}, page)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryList(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "workflow_templates"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM "workflow_templates" ORDER BY updated_at DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows(templateColumns).
			AddRow(templateRow("tpl-2", "Importers", now)...).
			AddRow(templateRow("tpl-1", "Millers", now.Add(-time.Hour))...))

	page, err := repo.List(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "tpl-2", page.Items[0].ID)
	require.Len(t, page.Items[0].Steps, 1)
	assert.Equal(t, "initial_review", page.Items[0].Steps[0].ID)
	assert.Equal(t, OutcomeReject, page.Items[0].Steps[0].Conditions.OnReject)
	assert.Nil(t, page.Items[0].LicenseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryCreateAssignsUUID(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "workflow_templates"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	entity := validTemplate()
	err := repo.Create(context.Background(), &entity)

	require.NoError(t, err)
	_, parseErr := uuid.Parse(entity.ID)
	assert.NoError(t, parseErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryFind(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Date(2024, 5, 4, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "workflow_templates" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(templateColumns).AddRow(templateRow("tpl-1", "Millers", now)...))

	entity, err := repo.Find(context.Background(), "tpl-1")

	require.NoError(t, err)
	assert.Equal(t, "Millers", entity.Name)
	assert.Equal(t, LicenseMillers, entity.LicenseType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryFindNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "workflow_templates" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(templateColumns))

	_, err := repo.Find(context.Background(), "missing")

	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryUpdateKeepsIdentity(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "workflow_templates" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(templateColumns).AddRow(templateRow("tpl-1", "Millers", created)...))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "workflow_templates" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	next := validTemplate()
	next.ID = "ignored"
	next.Name = "Millers v2"
	updated, err := repo.Update(context.Background(), "tpl-1", &next)

	require.NoError(t, err)
	assert.Equal(t, "tpl-1", updated.ID)
	assert.True(t, updated.CreatedAt.Equal(created))
	assert.Equal(t, "Millers v2", updated.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryUpdateMissing(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "workflow_templates" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(templateColumns))

	next := validTemplate()
	_, err := repo.Update(context.Background(), "missing", &next)

	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryDelete(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "workflow_templates" WHERE id = \$1`).
		WithArgs("tpl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "tpl-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepositoryDeleteMissing(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "workflow_templates" WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "missing")

	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
