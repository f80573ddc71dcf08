package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-gin-storefront/internal/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepoFindBySubjectNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE subject_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewUserRepo(db).FindBySubject(context.Background(), "sub-1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoSaveVersionConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "users" SET .*version`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	u := &domain.User{ID: "u1", SubjectID: "s1", Role: domain.RoleUser, Version: 3}
	err := NewUserRepo(db).Save(context.Background(), u)

	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, int64(3), u.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoSaveBumpsVersion(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "users" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &domain.User{ID: "u1", SubjectID: "s1", Role: domain.RoleUser, Version: 3}
	require.NoError(t, NewUserRepo(db).Save(context.Background(), u))

	assert.Equal(t, int64(4), u.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepoPlaceRollsBackOnConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "orders"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	u := &domain.User{ID: "u1", Version: 1, Cart: domain.Cart{{ProductID: "p", Quantity: 1}}}
	o := &domain.Order{ID: "o1", UserID: "u1", Status: domain.OrderPending, PaymentMethod: "cod"}
	err := NewOrderRepo(db).Place(context.Background(), o, u)

	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Len(t, u.Cart, 1, "caller's user is untouched on failure")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsDupKey(t *testing.T) {
	assert.True(t, isDupKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDupKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_subject_id"`)))
	assert.True(t, isDupKey(errors.New("Error 1062: Duplicate entry 'x' for key 'users.idx'")))
	assert.False(t, isDupKey(errors.New("connection refused")))
}
