package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fundflow/internal/app"
	"github.com/MrJamesThe3rd/fundflow/internal/config"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

func load(t *testing.T, env map[string]string) *config.Config {
	t.Helper()

	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	return cfg
}

func TestNewEngine_Backends(t *testing.T) {
	type testCase struct {
		name string
		env  map[string]string
	}

	tests := []testCase{
		{
			name: "Memory",
			env:  map[string]string{"STORE_BACKEND": "memory", "CLAIM_SETTLE": "0s"},
		},
		{
			name: "XLSX",
			env: map[string]string{
				"STORE_BACKEND": "xlsx",
				"XLSX_PATH":     filepath.Join(t.TempDir(), "book.xlsx"),
				"CLAIM_SETTLE":  "0s",
				"TIMEZONE":      "UTC",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg := load(t, tt.env)

			store, closeStore, err := app.OpenStore(ctx, cfg)
			require.NoError(t, err)
			defer closeStore()

			engine, closeEngine, err := app.NewEngine(ctx, cfg, store)
			require.NoError(t, err)
			defer closeEngine()

			r, err := engine.Submit(ctx, workflow.Draft{
				Type:            record.TypeIncome,
				Requester:       "sara",
				Project:         "Grants",
				Purpose:         "Donation",
				RequestedAmount: 1000,
			})
			require.NoError(t, err)
			assert.Equal(t, "TRX-0001", r.ID)

			got, err := engine.Approve(ctx, r.ID)
			require.NoError(t, err)
			assert.Equal(t, record.StageAwaitingPayment, got.Stage())
		})
	}
}

func TestNewEngine_BadTimezone(t *testing.T) {
	cfg := load(t, map[string]string{"TIMEZONE": "Nowhere/City"})

	store, closeStore, err := app.OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()

	_, _, err = app.NewEngine(context.Background(), cfg, store)
	assert.ErrorContains(t, err, "Nowhere/City")
}
