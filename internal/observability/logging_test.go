package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogger_Record(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAuditLogger(slog.NewJSONHandler(&buf, nil))

	logger.Record(context.Background(), 3, "user.ban", "user", uint(9), map[string]any{"days": 7})

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "audit", rec["log_type"])
	assert.Equal(t, "user.ban", rec["action"])
	assert.Equal(t, float64(3), rec["actor_id"])
	assert.Equal(t, float64(9), rec["target_id"])
	assert.Equal(t, float64(7), rec["days"])
}
