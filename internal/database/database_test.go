package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipe-api/config"
	"github.com/pageza/recipe-api/internal/models"
)

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := New(&config.Config{
		Environment: config.Test,
		DBDriver:    config.DriverSQLite,
		DBPath:      ":memory:",
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, RunMigrations(context.Background(), db, zap.NewNop()))
	return db
}

func TestRunMigrationsSQLite(t *testing.T) {
	db := newSQLite(t)

	for _, table := range []string{"users", "auth_tokens", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Tag{}, "idx_tags_owner_name"))
	assert.True(t, db.Migrator().HasIndex(&models.Ingredient{}, "idx_ingredients_owner_name"))
}

func TestDuplicateKeysAreTranslated(t *testing.T) {
	db := newSQLite(t)

	user := models.User{Email: "dup@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	err := db.Create(&models.User{Email: "dup@example.com", PasswordHash: "y"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	owner := user.ID
	require.NoError(t, db.Create(&models.Tag{UserID: owner, Name: "Vegan"}).Error)
	err = db.Create(&models.Tag{UserID: owner, Name: "Vegan"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	other := models.User{Email: "other@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, db.Create(&other).Error)
	assert.NoError(t, db.Create(&models.Tag{UserID: other.ID, Name: "Vegan"}).Error)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(&config.Config{DBDriver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}

func TestHealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectPing()
	assert.NoError(t, HealthCheck(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, HealthCheck(context.Background(), db))

	assert.NoError(t, mock.ExpectationsWereMet())
}

var testMigrations = fstest.MapFS{
	"0001_first.sql":          {Data: []byte("CREATE TABLE first (id INT);")},
	"0001_first_rollback.sql": {Data: []byte("DROP TABLE first;")},
	"0002_second.sql":         {Data: []byte("CREATE TABLE second (id INT);")},
	"README.md":               {Data: []byte("not a migration")},
}

func TestApplyMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exists := regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(exists).WithArgs("0001_first.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(exists).WithArgs("0002_second.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE second (id INT);")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (name) VALUES ($1)")).
		WithArgs("0002_second.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := ApplyMigrations(context.Background(), db, testMigrations, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_second.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrationsRollsBackFailedFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := fstest.MapFS{"0001_broken.sql": {Data: []byte("CREATE TABLE broken (")}}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("0001_broken.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE broken (")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	applied, err := ApplyMigrations(context.Background(), db, files, zap.NewNop())
	assert.Error(t, err)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("0001_first.sql"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE first;")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schema_migrations WHERE name = $1")).
		WithArgs("0001_first.sql").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	name, err := RollbackMigration(context.Background(), db, testMigrations, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "0001_first.sql", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRollbackMigrationNothingApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, err = RollbackMigration(context.Background(), db, testMigrations, zap.NewNop())
	assert.ErrorIs(t, err, ErrNoMigrations)
}

func TestRollbackMigrationMissingFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("0002_second.sql"))

	_, err = RollbackMigration(context.Background(), db, testMigrations, zap.NewNop())
	assert.ErrorContains(t, err, "0002_second_rollback.sql")
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr(), zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClientErrors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url", zap.NewNop())
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(context.Background(), "redis://"+addr, zap.NewNop())
	assert.Error(t, err)
}
