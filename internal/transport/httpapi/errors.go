package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"bountyvault/internal/bootstrap/logging"
	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var kindStatus = map[errs.Kind]int{
	domainbounty.KindInvalidArgument:        http.StatusBadRequest,
	domainbounty.KindRecordNotFound:         http.StatusNotFound,
	domainbounty.KindUnauthorizedTeam:       http.StatusForbidden,
	domainbounty.KindNotGovernanceAuthority: http.StatusForbidden,
	domainbounty.KindUnauthorizedResearcher: http.StatusForbidden,
	domainbounty.KindCustodyUnauthorized:    http.StatusForbidden,
	domainbounty.KindVaultInactive:          http.StatusConflict,
	domainbounty.KindInvalidReportStatus:    http.StatusConflict,
	domainbounty.KindReportNotApproved:      http.StatusConflict,
	domainbounty.KindReportNotPaid:          http.StatusConflict,
	domainbounty.KindAddressInUse:           http.StatusConflict,
	domainbounty.KindDiscriminatorMismatch:  http.StatusConflict,
	domainbounty.KindVaultMismatch:          http.StatusConflict,
	domainbounty.KindTokenMismatch:          http.StatusConflict,
	domainbounty.KindArithmeticOverflow:     http.StatusUnprocessableEntity,
	domainbounty.KindInsufficientVaultFunds: http.StatusUnprocessableEntity,
	domainbounty.KindInsufficientBalance:    http.StatusUnprocessableEntity,
}

// StatusFor maps an error kind to its HTTP status. Unknown kinds are 500.
func StatusFor(err error) int {
	if status, ok := kindStatus[errs.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	kind := errs.KindOf(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(errs.WithStack(err))))
		message = "internal error"
	} else if !errors.Is(err, domainbounty.ErrRecordNotFound) {
		logging.Warn(r.Context(), "request rejected", slog.String("kind", string(kind)), slog.String("reason", message))
	}

	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: string(kind), Message: message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, value any) {
	render.Status(r, status)
	render.JSON(w, r, value)
}
