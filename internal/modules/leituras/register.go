package leituras

import (
	"database/sql"
	"log/slog"
	"net/http"

	"monitora/internal/config"
	"monitora/internal/modules/leituras/controller"
	"monitora/internal/modules/leituras/repository"
	"monitora/internal/modules/leituras/service"
	"monitora/internal/mqtt"
)

// RegisterFeature wires the leituras routes on mux. When source is not nil
// its telemetry messages are stored as well.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, limits config.Limits, source mqtt.MessageSource) *service.Service {
	leiturasRepository := repository.NewRepository(db)
	leiturasService := service.NewService(leiturasRepository, slog.Default().With("component", "leituras"))
	if source != nil {
		leiturasService.Register(source)
	}
	leiturasController := controller.NewLeiturasController(leiturasService, limits)
	leiturasController.RegisterRoutes(mux)
	return leiturasService
}
