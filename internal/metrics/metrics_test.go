package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSolve(t *testing.T) {
	before := testutil.ToFloat64(SolvesTotal.WithLabelValues("equation", "error"))
	ObserveSolve("equation", true, 3*time.Millisecond)
	after := testutil.ToFloat64(SolvesTotal.WithLabelValues("equation", "error"))
	assert.Equal(t, before+1, after)
}

func TestObserveVerification(t *testing.T) {
	before := testutil.ToFloat64(VerificationsTotal.WithLabelValues("true"))
	ObserveVerification(true)
	assert.Equal(t, before+1, testutil.ToFloat64(VerificationsTotal.WithLabelValues("true")))
}

func TestHandlerExposesInstruments(t *testing.T) {
	ObserveSolve("derivative", false, time.Millisecond)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "mentor_solves_total"))
}
