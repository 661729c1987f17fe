package httpx

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-sneakers-store/internal/orders"
	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
)

// writeFault maps an infrastructure or argument error to a response. Storage
// diagnostics are logged, not returned to the client.
func writeFault(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	var ce *postgres.ConnectionError
	switch {
	case errors.Is(err, orders.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.As(err, &ce):
		log.Error(op, zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
		return
	case errors.Is(err, postgres.ErrCommitUnknown):
		log.Error(op, zap.Error(err), zap.Bool("commit_unknown", true))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order outcome unknown, check recent orders before retrying"})
		return
	}
	log.Error(op, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func rejectionStatus(reason orders.RejectReason) (int, string) {
	switch reason {
	case orders.RejectNotFound:
		return http.StatusNotFound, "sneaker not found"
	case orders.RejectInsufficientStock:
		return http.StatusConflict, "not enough pairs in stock"
	case orders.RejectInvalidQuantity:
		return http.StatusUnprocessableEntity, "quantity must be positive"
	}
	return http.StatusBadRequest, "order rejected"
}
