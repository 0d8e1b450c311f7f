package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/edyou/engine-dashboard/internal/config"
)

func TestRequestLoggerWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	setup(&buf, config.LogConfig{Level: "info", Format: "json"})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tenants", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "/tenants", line["path"])
	require.EqualValues(t, http.StatusTeapot, line["status"])
}

func TestSetupFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	setup(&buf, config.LogConfig{Level: "nonsense", Format: "json"})
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
}
