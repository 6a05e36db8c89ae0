package handlers

import (
	"net/http"

	"medatlas-backend/pkg/common"
	pkgerrors "medatlas-backend/pkg/errors"
)

// respondAppError maps an application error onto the wire format. The
// AppError carries its own HTTP status; anything else is a 500.
func respondAppError(w http.ResponseWriter, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.RespondErrorWithDetails(w, status, string(appErr.Type), appErr.Message, appErr.Details)
		return
	}
	common.RespondError(w, http.StatusInternalServerError, string(pkgerrors.ErrorTypeInternal), "internal server error")
}

func respondBadRequest(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusBadRequest, string(pkgerrors.ErrorTypeValidation), message)
}
