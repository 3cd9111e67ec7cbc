package listener

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
	"github.com/bridgeport/bridgeport-go/internal/infrastructure/metrics"
)

// The manifest is a fixed document served locally; it never crosses the
// channel and requires no correlation.
const manifestJSON = `{
  "name": "bridgeport",
  "description": "HTTPS request/response correlation bridge",
  "version": "1.0.0",
  "protocol_version": "` + model.ProtocolVersion + `"
}`

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, manifestJSON)
}

// handleForward is the per-request orchestration: cap the body, hand the
// request to the bridge, suspend, and write whatever came back. The peer's
// status and body are written exactly as given.
func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	resp, id, err := s.bridge.Forward(r.Context(), r)
	metrics.RequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.writeFailure(w, r, id, err)
		return
	}

	metrics.RequestsTotal.WithLabelValues(metrics.OutcomeForwarded).Inc()
	w.WriteHeader(resp.Status)
	io.WriteString(w, resp.Body)
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, id uint64, err error) {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesErr):
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		writeError(w, http.StatusRequestEntityTooLarge, id, "request body too large")

	case errors.Is(err, model.ErrTimeout):
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeTimeout).Inc()
		s.logger.Warn("Request %d timed out after %s", id, s.config.RequestTimeout)
		writeError(w, http.StatusGatewayTimeout, id, "no response from peer before deadline")

	case errors.Is(err, model.ErrShuttingDown):
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeShutdown).Inc()
		writeError(w, http.StatusServiceUnavailable, id, "bridge shutting down")

	case errors.Is(err, model.ErrTooManyPending):
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		writeError(w, http.StatusServiceUnavailable, id, "too many pending requests")

	case r.Context().Err() != nil:
		// Caller disconnected before a reply arrived; nothing to write.
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeClientGone).Inc()

	default:
		metrics.RequestsTotal.WithLabelValues(metrics.OutcomeSendFailed).Inc()
		s.logger.Error("Failed to forward request %d: %v", id, err)
		writeError(w, http.StatusBadGateway, id, "failed to reach peer")
	}
}

func writeError(w http.ResponseWriter, status int, id uint64, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":      message,
		"request_id": id,
	})
}
