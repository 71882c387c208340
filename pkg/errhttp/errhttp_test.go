package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghuser/chatmesh/pkg/auth"
	authdomain "github.com/ghuser/chatmesh/services/auth/domain"
	chatdomain "github.com/ghuser/chatmesh/services/chat/domain"
	userdomain "github.com/ghuser/chatmesh/services/user/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrUserIDNotFound", auth.ErrUserIDNotFound, http.StatusUnauthorized},
		{"ErrInvalidCredentials", authdomain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"ErrInvalidRefreshToken", authdomain.ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"ErrEmailTaken", authdomain.ErrEmailTaken, http.StatusConflict},
		{"ErrUserNotFound", userdomain.ErrUserNotFound, http.StatusNotFound},
		{"ErrNotProfileOwner", userdomain.ErrNotProfileOwner, http.StatusForbidden},
		{"ErrConversationNotFound", chatdomain.ErrConversationNotFound, http.StatusNotFound},
		{"ErrNotParticipant", chatdomain.ErrNotParticipant, http.StatusForbidden},
		{"ErrUnknownParticipant", chatdomain.ErrUnknownParticipant, http.StatusUnprocessableEntity},
		{"wrapped ErrEmailTaken", fmt.Errorf("register user: %w", authdomain.ErrEmailTaken), http.StatusConflict},
		{"wrapped ErrConversationNotFound", fmt.Errorf("get conversation: %w", chatdomain.ErrConversationNotFound), http.StatusNotFound},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_JSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, userdomain.ErrUserNotFound)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if _, ok := body["error"]; !ok {
		t.Fatal("response body missing 'error' key")
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, userdomain.ErrUserNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}
