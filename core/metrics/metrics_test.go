package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"equipment-inventory/core/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	reg := metrics.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "equipos_test_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)
	counter.Add(3)

	app := fiber.New()
	metrics.Register(app, reg)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "equipos_test_total 3")
	assert.Contains(t, string(body), "go_goroutines")
}
