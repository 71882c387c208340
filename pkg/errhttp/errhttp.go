// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/chatmesh/pkg/auth"
	"github.com/ghuser/chatmesh/pkg/httpx"
	authdomain "github.com/ghuser/chatmesh/services/auth/domain"
	chatdomain "github.com/ghuser/chatmesh/services/chat/domain"
	userdomain "github.com/ghuser/chatmesh/services/user/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	httpx.JSONError(w, mapErrorToStatus(err), err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUserIDNotFound):
		return http.StatusUnauthorized // 401
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized // 401
	case errors.Is(err, authdomain.ErrInvalidRefreshToken):
		return http.StatusUnauthorized // 401
	case errors.Is(err, authdomain.ErrEmailTaken):
		return http.StatusConflict // 409
	case errors.Is(err, userdomain.ErrUserNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, userdomain.ErrNotProfileOwner):
		return http.StatusForbidden // 403
	case errors.Is(err, chatdomain.ErrConversationNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, chatdomain.ErrNotParticipant):
		return http.StatusForbidden // 403
	case errors.Is(err, chatdomain.ErrUnknownParticipant):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
