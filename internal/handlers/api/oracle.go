package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/clients/narrator"
)

func (h *Handler) askOracle(w http.ResponseWriter, r *http.Request) {
	var in narrator.AskRulesInput
	if err := h.decode(r, &in); err != nil {
		h.respondError(w, err)
		return
	}

	out, err := h.oracle.AskRules(r.Context(), &in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out)
}
