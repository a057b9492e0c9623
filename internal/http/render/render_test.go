package render_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fundflow/internal/http/render"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/sequence"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

func TestError(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}

	tests := []testCase{
		{
			name:       "Validation",
			err:        fmt.Errorf("submit: %w", &schema.ValidationError{Field: "purpose", Reason: "is required"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid",
		},
		{
			name:       "NotFound",
			err:        fmt.Errorf("%w: TRX-0009", workflow.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "InvalidTransition",
			err:        fmt.Errorf("approve: %w", workflow.ErrInvalidTransition),
			wantStatus: http.StatusConflict,
			wantCode:   "invalid_transition",
		},
		{
			name:       "Conflict",
			err:        workflow.ErrConflict,
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "SequencerConflict",
			err:        fmt.Errorf("submit: %w", sequence.ErrSequencerConflict),
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "Unavailable",
			err:        rowstore.Unavailable("read all", errors.New("timeout")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "store_unavailable",
		},
		{
			name:       "Internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			render.Error(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}
