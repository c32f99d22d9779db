package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/sift/pkg/catalog"
	"github.com/aretw0/sift/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsCatalogActivity(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)

	c := catalog.New(catalog.WithHooks(m.Hooks()))
	require.NoError(t, c.Register("name", schema.String().Min(2)))

	ctx := context.Background()
	for _, in := range []any{"Ada", "A", 3, "Bob"} {
		_, err := c.Validate(ctx, "name", in)
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("name", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("name", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.issues.WithLabelValues("name", "too_small")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.issues.WithLabelValues("name", "invalid_type")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("name")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)

	c := catalog.New(catalog.WithHooks(m.Hooks()))
	require.NoError(t, c.Register("flag", schema.Boolean()))
	_, err = c.Validate(context.Background(), "flag", true)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `sift_validations_total{outcome="success",schema="flag"} 1`), body)
	assert.Contains(t, body, "sift_validation_duration_seconds_bucket")
	assert.Contains(t, body, `sift_registrations_total{schema="flag"} 1`)
}
