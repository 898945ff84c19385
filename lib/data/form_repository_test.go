package data

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"ikaris/lib/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newFormDao(t *testing.T) (*FormDao, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return &FormDao{DB: db, Logger: logger}, mock, func() { db.Close() }
}

var formTestColumns = []string{
	"id", "company_id", "title", "description", "fields",
	"assigned_departments", "respondent_departments", "editor_departments",
	"is_archived", "created_at", "created_by", "updated_at", "updated_by",
}

func formRow(id int64, title string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, int64(7), title, nil,
		[]byte(`[{"id":"fld_a1","type":"short_text","label":"Nombre"}]`),
		[]byte(`{Ventas}`), []byte(`{}`), []byte(`{}`),
		false, now, "auth-user-1", now, nil,
	}
}

func Test_GetFormByID_Success(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newFormDao(t)
	defer closeFn()

	mock.ExpectQuery("FROM forms.forms").
		WithArgs(int64(7), int64(42)).
		WillReturnRows(sqlmock.NewRows(formTestColumns).AddRow(formRow(42, "Encuesta")...))

	//Act
	form, err := dao.GetFormByID(context.Background(), 7, 42)

	//Assert
	assert.NoError(t, err)
	assert.NotNil(t, form)
	assert.Equal(t, int64(42), form.ID)
	assert.Equal(t, "Encuesta", form.Title)
	assert.Equal(t, []string{"Ventas"}, form.AssignedDepartments)
	assert.Equal(t, []string{}, form.RespondentDepartments)
	assert.Len(t, form.Fields, 1)
	assert.Equal(t, "fld_a1", form.Fields[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetFormByID_RejectsUnknownStoredKind(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newFormDao(t)
	defer closeFn()

	row := formRow(42, "Encuesta")
	row[4] = []byte(`[{"id":"fld_a1","type":"text","label":"Nombre"}]`)
	mock.ExpectQuery("FROM forms.forms").
		WithArgs(int64(7), int64(42)).
		WillReturnRows(sqlmock.NewRows(formTestColumns).AddRow(row...))

	//Act
	form, err := dao.GetFormByID(context.Background(), 7, 42)

	//Assert
	assert.Nil(t, form)
	assert.ErrorContains(t, err, "unknown field type")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetFormByID_NotFound(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newFormDao(t)
	defer closeFn()

	mock.ExpectQuery("FROM forms.forms").
		WithArgs(int64(7), int64(99)).
		WillReturnError(sql.ErrNoRows)

	//Act
	form, err := dao.GetFormByID(context.Background(), 7, 99)

	//Assert
	assert.NoError(t, err)
	assert.Nil(t, form)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetActiveForms_Success(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newFormDao(t)
	defer closeFn()

	rows := sqlmock.NewRows(formTestColumns).
		AddRow(formRow(2, "Segunda")...).
		AddRow(formRow(1, "Primera")...)
	mock.ExpectQuery("FROM forms.forms").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	//Act
	forms, err := dao.GetActiveForms(context.Background(), 7)

	//Assert
	assert.NoError(t, err)
	assert.Len(t, forms, 2)
	assert.Equal(t, "Segunda", forms[0].Title)
	assert.Equal(t, "Primera", forms[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CreateForm_Success(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newFormDao(t)
	defer closeFn()

	mock.ExpectQuery("INSERT INTO forms.forms").
		WillReturnRows(sqlmock.NewRows(formTestColumns).AddRow(formRow(10, "Nueva")...))

	req := &models.CreateFormRequest{
		Title:               "Nueva",
		Fields:              []models.Field{},
		AssignedDepartments: []string{"Ventas"},
	}

	//Act
	form, err := dao.CreateForm(context.Background(), 7, "auth-user-1", req)

	//Assert
	assert.NoError(t, err)
	assert.NotNil(t, form)
	assert.Equal(t, int64(10), form.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_UpdateForm_NotFound(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newFormDao(t)
	defer closeFn()

	mock.ExpectQuery("UPDATE forms.forms").
		WillReturnError(sql.ErrNoRows)

	title := "Nuevo titulo"
	req := &models.UpdateFormRequest{Title: &title}

	//Act
	form, err := dao.UpdateForm(context.Background(), 7, 99, "auth-user-1", req)

	//Assert
	assert.Nil(t, form)
	assert.EqualError(t, err, "form not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
