package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/swiss-pairing/services"
)

type PairingHandler struct {
	pairingService services.PairingService
}

func NewPairingHandler(ps services.PairingService) *PairingHandler {
	return &PairingHandler{pairingService: ps}
}

func (h *PairingHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.pairingService.Standings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GeneratePairings pairs the next round. An optional ?seed= makes the
// result reproducible.
func (h *PairingHandler) GeneratePairings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var seed *int64
	if raw := r.URL.Query().Get("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid seed query parameter: %q", raw))
			return
		}
		seed = &v
	}

	sheet, err := h.pairingService.NextRound(r.Context(), tournamentID, seed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pairings": sheet}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
