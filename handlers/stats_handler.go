package handlers

import (
	"net/http"

	"github.com/Dosada05/esports-arena/services"
	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// ValorantPlayer godoc
// @Summary      Valorant player stats
// @Description  Account, rank and last matches. Sections that failed upstream are reported in sources.
// @Tags         stats
// @Produce      json
// @Param        region  path  string  true  "na, eu, ap, kr, latam or br"
// @Param        name    path  string  true  "Riot game name"
// @Param        tag     path  string  true  "Riot tag line"
// @Success      200  {object}  models.PlayerStats
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Security     BearerAuth
// @Router       /stats/valorant/{region}/{name}/{tag} [get]
func (h *StatsHandler) ValorantPlayer(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.PlayerStats(r.Context(),
		chi.URLParam(r, "region"),
		chi.URLParam(r, "name"),
		chi.URLParam(r, "tag"),
	)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats, nil)
}
