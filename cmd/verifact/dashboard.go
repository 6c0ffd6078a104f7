// cmd/verifact/dashboard.go
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// apiServer exposes the verification core to the UI layer over HTTP JSON.
// It renders nothing: results pass through verbatim.
type apiServer struct {
	verifier *Verifier
	store    *ResultStore
	started  time.Time
}

// verifyRequest is the body for POST /api/verify
type verifyRequest struct {
	Claim string `json:"claim"`
}

// tagRequest is the body for POST /api/tag
type tagRequest struct {
	Claim    string            `json:"claim"`
	Evidence []EvidenceArticle `json:"evidence"`
}

// newAPIRouter wires the HTTP routes for an apiServer.
func newAPIRouter(api *apiServer) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/api/verify", api.handleVerify).Methods("POST")
	router.HandleFunc("/api/tag", api.handleTag).Methods("POST")
	router.HandleFunc("/api/health", api.handleHealth).Methods("GET")
	router.HandleFunc("/api/status", api.handleStatus).Methods("GET")
	return router
}

// StartAPIServer builds the router and starts serving in the background.
// The returned server is the caller's to shut down.
func StartAPIServer(port int, verifier *Verifier, store *ResultStore) *http.Server {
	api := &apiServer{
		verifier: verifier,
		store:    store,
		started:  time.Now(),
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: newAPIRouter(api),
	}

	go func() {
		Logger().Info("API server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			Logger().Error("API server failed: %v", err)
		}
	}()

	return server
}

// handleVerify runs the full verification pipeline for a claim.
func (a *apiServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Claim == "" {
		writeJSONError(w, http.StatusBadRequest, "claim is required")
		return
	}

	result := a.verifier.Verify(r.Context(), req.Claim)
	writeJSON(w, http.StatusOK, result)
}

// handleTag runs the stance tagger over caller-supplied evidence.
func (a *apiServer) handleTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Claim == "" {
		writeJSONError(w, http.StatusBadRequest, "claim is required")
		return
	}

	result := a.verifier.TagEvidence(r.Context(), req.Claim, req.Evidence)
	writeJSON(w, http.StatusOK, result)
}

// handleHealth reports liveness and model readiness.
func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if !a.verifier.Ready() {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":  status,
		"version": VERSION,
		"model":   a.verifier.ModelName(),
	})
}

// handleStatus reports runtime counters.
func (a *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":        VERSION,
		"uptime_seconds": int64(time.Since(a.started).Seconds()),
		"ready":          a.verifier.Ready(),
		"model":          a.verifier.ModelName(),
		"cached_results": a.store.Len(),
	})
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		Logger().Warning("Failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
