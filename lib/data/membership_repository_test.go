package data

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newMembershipDao(t *testing.T) (*MembershipDao, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return &MembershipDao{DB: db, Logger: logger}, mock, func() { db.Close() }
}

var membershipTestColumns = []string{
	"id", "company_id", "auth_user_id", "username", "role", "department", "active",
	"can_create_forms", "phone", "avatar_url", "phone_updated_at", "welcome_sent_at",
	"created_at", "updated_at",
}

func membershipRow(id int64, role, department string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, int64(7), "auth-user-1", "maria", role, department, true,
		false, nil, nil, nil, nil,
		now, now,
	}
}

func Test_GetMembership_Success(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newMembershipDao(t)
	defer closeFn()

	mock.ExpectQuery("FROM iam.company_users").
		WithArgs(int64(7), "auth-user-1").
		WillReturnRows(sqlmock.NewRows(membershipTestColumns).AddRow(membershipRow(3, "POLITES", "Ventas")...))

	//Act
	m, err := dao.GetMembership(context.Background(), 7, "auth-user-1")

	//Assert
	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.Equal(t, int64(3), m.ID)
	assert.Equal(t, "POLITES", m.Role)
	assert.Equal(t, "Ventas", m.Department.String)
	assert.True(t, m.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_GetMembership_NotFound(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newMembershipDao(t)
	defer closeFn()

	mock.ExpectQuery("FROM iam.company_users").
		WithArgs(int64(7), "stranger").
		WillReturnError(sql.ErrNoRows)

	//Act
	m, err := dao.GetMembership(context.Background(), 7, "stranger")

	//Assert
	assert.NoError(t, err)
	assert.Nil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_HasAnyMembership(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newMembershipDao(t)
	defer closeFn()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("auth-user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	//Act
	exists, err := dao.HasAnyMembership(context.Background(), "auth-user-1")

	//Assert
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_UpdateProfile_PhoneStampsCooldown(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newMembershipDao(t)
	defer closeFn()

	// a phone change must also refresh phone_updated_at
	mock.ExpectQuery(`UPDATE iam.company_users\s+SET .*phone_updated_at = NOW\(\)`).
		WithArgs("+34600111222", int64(3)).
		WillReturnRows(sqlmock.NewRows(membershipTestColumns).AddRow(membershipRow(3, "POLITES", "Ventas")...))

	phone := "+34600111222"

	//Act
	m, err := dao.UpdateProfile(context.Background(), 3, &phone, nil, true)

	//Assert
	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_UpdateProfile_AvatarOnly(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newMembershipDao(t)
	defer closeFn()

	mock.ExpectQuery("UPDATE iam.company_users").
		WithArgs("avatars/7/3.png", int64(3)).
		WillReturnRows(sqlmock.NewRows(membershipTestColumns).AddRow(membershipRow(3, "POLITES", "Ventas")...))

	avatar := "avatars/7/3.png"

	//Act
	m, err := dao.UpdateProfile(context.Background(), 3, nil, &avatar, false)

	//Assert
	assert.NoError(t, err)
	assert.NotNil(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_MarkWelcomeSent(t *testing.T) {
	//Arrange
	dao, mock, closeFn := newMembershipDao(t)
	defer closeFn()

	mock.ExpectExec("SET welcome_sent_at").
		WithArgs(sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	//Act
	err := dao.MarkWelcomeSent(context.Background(), 3)

	//Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
