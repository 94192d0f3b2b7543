// Package intervals exposes the interval log over HTTP.
package intervals

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kilianp07/gridsched/core/dispatch/logging"
)

// Path is where NewLogHandler is mounted.
const Path = "/api/intervals"

// NewLogHandler returns an HTTP handler answering GET requests with the
// stored interval records as JSON. Supported query parameters are run_id,
// from, to (inclusive block numbers) and unit.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store logging.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		params := r.URL.Query()
		q := logging.LogQuery{RunID: params.Get("run_id"), Unit: params.Get("unit")}
		if s := params.Get("from"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "from: "+err.Error(), http.StatusBadRequest)
				return
			}
			q.FromBlock = v
		}
		if s := params.Get("to"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "to: "+err.Error(), http.StatusBadRequest)
				return
			}
			q.ToBlock, q.HasTo = v, true
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []logging.IntervalRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
