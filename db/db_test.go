package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_AppliesEmbeddedSchema(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS chat_messages")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_WrapsError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	boom := errors.New("permission denied")
	mock.ExpectExec("CREATE TABLE").WillReturnError(boom)

	err = Migrate(context.Background(), conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSchema_IsIdempotent(t *testing.T) {
	for _, stmt := range regexp.MustCompile(`(?m)^CREATE [A-Z ]+`).FindAllString(schema, -1) {
		assert.Contains(t, stmt, "IF NOT EXISTS", stmt)
	}
}
