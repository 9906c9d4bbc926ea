package repositories

import (
	"context"
	"net/http"

	"pressure-monitor/internal/models"
)

// HTTPClient is the transport dependency injected into repositories, a
// *http.Client in production and a stub in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ForecastRepository interface {
	Name() string
	FetchForecast(ctx context.Context, lat, lon float64) (models.ForecastSeries, error)
}
