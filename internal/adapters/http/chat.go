package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (rt *Router) askChat(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	answer, err := rt.chat.Ask(r.Context(), projectID, callerID(r), req.Question)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) chatHistory(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")

	turns, err := rt.chat.History(r.Context(), projectID, callerID(r))
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"turns": turns})
}
