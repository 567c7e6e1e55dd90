package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestUniqueViolation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		key    string
		unique bool
	}{
		{
			name:   "postgres constraint",
			err:    fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_smart_furniture_hookups_name"}),
			key:    "ux_smart_furniture_hookups_name",
			unique: true,
		},
		{
			name: "postgres other code",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "fk_other"},
		},
		{
			name:   "mysql 8 key",
			err:    &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Stove' for key 'smart_furniture_hookups.ux_smart_furniture_hookups_endpoint'"},
			key:    "ux_smart_furniture_hookups_endpoint",
			unique: true,
		},
		{
			name: "mysql other number",
			err:  &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"},
		},
		{
			name:   "sqlite column",
			err:    errors.New("constraint failed: UNIQUE constraint failed: smart_furniture_hookups.name (2067)"),
			key:    "smart_furniture_hookups.name",
			unique: true,
		},
		{
			name:   "postgres text",
			err:    errors.New(`ERROR: duplicate key value violates unique constraint "ux_smart_furniture_hookups_endpoint" (SQLSTATE 23505)`),
			key:    "ux_smart_furniture_hookups_endpoint",
			unique: true,
		},
		{
			name:   "gorm translated",
			err:    gorm.ErrDuplicatedKey,
			unique: true,
		},
		{
			name: "unrelated",
			err:  errors.New("connection refused"),
		},
		{
			name: "nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := UniqueViolation(tt.err)
			assert.Equal(t, tt.unique, ok)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestDialect(t *testing.T) {
	for _, typ := range []string{TypePostgres, TypeMySQL, TypeSQLite} {
		d, err := Dialect(Config{Type: typ})
		assert.NoError(t, err, typ)
		assert.NotNil(t, d, typ)
	}

	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}

func TestGormLoggerConfigTreatsConflictsAsExpected(t *testing.T) {
	cfg := gormLoggerConfig("error")
	assert.Equal(t, gormlogger.Error, cfg.Level)
	assert.True(t, cfg.Expected(&pgconn.PgError{Code: "23505", ConstraintName: "ux_smart_furniture_hookups_name"}))
	assert.False(t, cfg.Expected(errors.New("connection refused")))

	assert.Equal(t, gormlogger.Silent, gormLoggerConfig("silent").Level)
}
