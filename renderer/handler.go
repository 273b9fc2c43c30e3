package renderer

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// StateHandler serves the color state for /api/state. GET returns the
// current state, POST sets it as a direct change from the UI.
func StateHandler(r *Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			getStateHandler(w, r)
		case http.MethodPost:
			setStateHandler(w, req, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func getStateHandler(w http.ResponseWriter, r *Renderer) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(r.State()); err != nil {
		slog.Error("Failed to encode color state to JSON", "error", err)
		http.Error(w, "Failed to serialize state", http.StatusInternalServerError)
	}
}

func setStateHandler(w http.ResponseWriter, req *http.Request, r *Renderer) {
	defer req.Body.Close()
	var state State
	if err := json.NewDecoder(req.Body).Decode(&state); err != nil {
		slog.Error("Failed to decode incoming JSON", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	slog.Info("Handling POST /api/state request", "state", state)
	r.ColorUpdated(state.Color, state.Brightness, CallModeDirectChange)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(r.State()); err != nil {
		slog.Error("Failed to encode color state to JSON", "error", err)
	}
}
