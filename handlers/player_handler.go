package handlers

import (
	"net/http"

	"github.com/Dosada05/tt-tournament/repositories"
	"github.com/Dosada05/tt-tournament/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

func (h *PlayerHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.CreatePlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler returns the player together with their tournament history.
func (h *PlayerHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.playerService.GetPlayer(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RankingHandler handles GET /players?active=true&limit=&offset=
func (h *PlayerHandler) RankingHandler(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListPlayersFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	if limit, ok, err := queryInt(r, "limit"); err != nil {
		badRequestResponse(w, r, err)
		return
	} else if ok {
		filter.Limit = limit
	}
	if offset, ok, err := queryInt(r, "offset"); err != nil {
		badRequestResponse(w, r, err)
		return
	} else if ok {
		filter.Offset = offset
	}

	players, err := h.playerService.ListRanking(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
