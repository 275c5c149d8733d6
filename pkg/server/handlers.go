package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/augustcaio/portfolio-gateway/pkg/gateway"
	"github.com/augustcaio/portfolio-gateway/pkg/mailer"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
	"github.com/augustcaio/portfolio-gateway/pkg/version"
)

// Data route headers
const (
	HeaderOutcome = "X-Gateway-Outcome"
	HeaderSource  = "X-Gateway-Source"
	HeaderCache   = "X-Cache"
)

const maxEmailBody = 64 << 10

var errNotFound = errors.New("route not found")

// Handlers serves the gateway routes
type Handlers struct {
	deps Deps
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthHandler reports that the service is up.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.String()})
}

// GetProfile serves the owner profile. It always answers 200.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.deps.Reader.GetProfile(r.Context()))
}

// GetStats serves the aggregate stats. It always answers 200.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.deps.Reader.GetAggregateStats(r.Context()))
}

// GetProjects serves up to ?limit repositories. A missing or malformed
// limit selects the default.
func (h *Handlers) GetProjects(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.deps.Reader.GetRepositories(r.Context(), parseLimit(r)))
}

// RefreshProjects drops the listing snapshot and serves a fresh read.
func (h *Handlers) RefreshProjects(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)
	if h.deps.Refresher == nil {
		writeResult(w, h.deps.Reader.GetRepositories(r.Context(), limit))
		return
	}
	writeResult(w, h.deps.Refresher.RefreshRepositories(r.Context(), limit))
}

type sendEmailResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// SendEmail delivers a contact-form message.
func (h *Handlers) SendEmail(w http.ResponseWriter, r *http.Request) {
	if h.deps.Mailer == nil || !h.deps.Mailer.Enabled() {
		WriteError(w, unavailable(mailer.ErrDisabled))
		return
	}

	var msg mailer.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEmailBody)).Decode(&msg); err != nil {
		WriteError(w, badRequest(errors.New("request body must be a JSON object with name, email and message")))
		return
	}
	if err := msg.Validate(); err != nil {
		WriteError(w, badRequest(err))
		return
	}

	id, err := h.deps.Mailer.Send(r.Context(), msg)
	if err != nil {
		switch {
		case errors.Is(err, mailer.ErrInvalidMessage):
			WriteError(w, badRequest(err))
		case errors.Is(err, mailer.ErrDisabled):
			WriteError(w, unavailable(err))
		default:
			h.deps.Logger.Error("failed to send email", "err", err, "request_id", RequestID(r.Context()))
			WriteError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, sendEmailResponse{Message: "Email sent successfully", ID: id})
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func writeResult[T any](w http.ResponseWriter, res gateway.Result[T]) {
	outcome := res.Outcome
	if !outcome.Valid() {
		outcome = types.OutcomeFallback
	}

	w.Header().Set(HeaderOutcome, outcome.String())
	w.Header().Set(HeaderSource, res.Source)
	if res.CachedAt != nil {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}
	w.Header().Set("Cache-Control", "no-store")

	writeJSON(w, http.StatusOK, res.Data)
}
