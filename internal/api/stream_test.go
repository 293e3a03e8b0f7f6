package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiverse/bcrat/internal/domain"
)

func TestRiskStream(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/v1/risk/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Two frames over one connection; each gets its own result.
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteJSON(map[string]any{
			"profile": map[string]any{
				"id":                      "ws-1",
				"initial_age":             45,
				"projection_end_age":      50,
				"race":                    1,
				"num_breast_biopsies":     0,
				"age_at_menarche":         12,
				"age_at_first_birth":      25,
				"num_relatives_with_brca": 0,
				"atypical_hyperplasia":    99,
			},
		}))

		var result domain.RiskResult
		require.NoError(t, conn.ReadJSON(&result))
		assert.True(t, result.Success)
		require.NotNil(t, result.AbsoluteRisk)
		assert.Greater(t, *result.AbsoluteRisk, 0.0)
	}
}

func TestRiskStream_InvalidFrameCloses(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/v1/risk/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var result domain.RiskResult
	assert.Error(t, conn.ReadJSON(&result), "server should close after a malformed frame")
}
