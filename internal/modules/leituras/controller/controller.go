package controller

import (
	"net/http"

	"monitora/internal/config"
	"monitora/internal/modules/leituras/service"
)

type LeiturasController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type leiturasControllerImpl struct {
	service *service.Service
	limits  config.Limits
}

func NewLeiturasController(svc *service.Service, limits config.Limits) LeiturasController {
	return &leiturasControllerImpl{service: svc, limits: limits}
}

func (c *leiturasControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/leituras", c.handleLeituras)
	mux.HandleFunc("GET /api/series", c.handleSeries)
	mux.HandleFunc("POST /receive", c.handleReceive)
	mux.HandleFunc("GET /download", c.handleDownload)

	mux.HandleFunc("GET /{$}", c.handleDashboard)
	mux.HandleFunc("GET /partials/live", c.handleLivePartial)
	mux.HandleFunc("GET /charts/{scope}", c.handleChart)
	mux.HandleFunc("GET /grafico.png", c.handleChartPNG)
}
