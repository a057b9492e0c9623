package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "ConnectionFailure", err: &pgconn.PgError{Code: "08006"}, transient: true},
		{name: "SerializationFailure", err: &pgconn.PgError{Code: "40001"}, transient: true},
		{name: "AdminShutdown", err: &pgconn.PgError{Code: "57P01"}, transient: true},
		{name: "UndefinedTable", err: &pgconn.PgError{Code: "42P01"}, transient: false},
		{name: "NoResponse", err: errors.New("dial tcp: connection refused"), transient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("read all", tt.err)
			assert.Equal(t, tt.transient, rowstore.IsTransient(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
