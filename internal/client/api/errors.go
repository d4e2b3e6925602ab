package api

import (
	"fmt"
	"net/http"

	"github.com/sharmaronit/mindspend-labs/internal/common"
)

// codeNoRows is the collaborator's "no row found" signal. It is a
// distinguished not-found case, not a generic failure.
const codeNoRows = "PGRST116"

// mapError folds a collaborator error into the client's sentinel taxonomy.
// Callers match with errors.Is; the collaborator's human message is kept in
// the wrapped text.
func mapError(status int, we *wireError) error {
	code, msg := "", ""
	if we != nil {
		code, msg = we.Code, we.Message
	}

	if code == codeNoRows {
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	}

	switch {
	case code == "invalid_grant" || code == "invalid_credentials":
		return fmt.Errorf("%w: %s", common.ErrInvalidCredentials, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", common.ErrNotFound, msg)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", common.ErrTooManyAttempts, msg)
	case status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", common.ErrUnavailable, msg)
	default:
		if msg == "" {
			return fmt.Errorf("request failed with status %d", status)
		}
		return fmt.Errorf("%s: %s", code, msg)
	}
}
