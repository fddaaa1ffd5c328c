package camunda

import (
	"fmt"
	"testing"

	apperrors "carbon-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"connection refused", fmt.Errorf("rpc error: connection refused"), "EXTERNAL_SERVICE_ERROR"},
		{"broker unavailable", fmt.Errorf("code = Unavailable desc = broker down"), "EXTERNAL_SERVICE_ERROR"},
		{"deadline exceeded", fmt.Errorf("context deadline exceeded"), "TIMEOUT_ERROR"},
		{"not found", fmt.Errorf("process definition not found"), "RESOURCE_NOT_FOUND"},
		{"unauthorized", fmt.Errorf("rpc error: unauthorized"), "AUTHENTICATION_ERROR"},
		{"anything else", fmt.Errorf("something odd happened"), "EXTERNAL_SERVICE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapZeebeError(tt.err, "topology")

			var stdErr *apperrors.StandardError
			require.ErrorAs(t, mapped, &stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Contains(t, stdErr.Details, "Zeebe operation 'topology' failed")
		})
	}
}
