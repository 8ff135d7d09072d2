package services

import (
	"github.com/yourusername/invoicely/apperr"
)

// CurrentUser is the authenticated principal the auth middleware
// attaches to every request payload under the "currentUser" key.
type CurrentUser struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func currentUserFrom(payload map[string]any) (CurrentUser, *apperr.Error) {
	switch cu := payload["currentUser"].(type) {
	case CurrentUser:
		return cu, nil
	case *CurrentUser:
		return *cu, nil
	}
	return CurrentUser{}, apperr.Unauthorized("Unauthorized access")
}
