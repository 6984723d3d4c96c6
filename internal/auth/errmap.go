// File: internal/auth/errmap.go
package auth

import (
	"errors"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"

	"travel_agent_backend/internal/common"
)

type authErrorEntry struct {
	status  int
	message string
}

// firebaseErrors maps Firebase Authentication error codes to user-facing messages.
var firebaseErrors = map[string]authErrorEntry{
	"EMAIL_NOT_FOUND":                  {http.StatusUnauthorized, "Invalid email or password."},
	"INVALID_PASSWORD":                 {http.StatusUnauthorized, "Invalid email or password."},
	"INVALID_LOGIN_CREDENTIALS":        {http.StatusUnauthorized, "Invalid email or password."},
	"MISSING_PASSWORD":                 {http.StatusBadRequest, "Please enter your password."},
	"USER_DISABLED":                    {http.StatusForbidden, "This account has been disabled. Please contact support."},
	"USER_NOT_FOUND":                   {http.StatusNotFound, "No account was found for this user."},
	"EMAIL_EXISTS":                     {http.StatusConflict, "An account with this email already exists."},
	"WEAK_PASSWORD":                    {http.StatusBadRequest, "Password should be at least 6 characters."},
	"INVALID_EMAIL":                    {http.StatusBadRequest, "Please enter a valid email address."},
	"TOO_MANY_ATTEMPTS_TRY_LATER":      {http.StatusTooManyRequests, "Too many attempts. Please try again later."},
	"OPERATION_NOT_ALLOWED":            {http.StatusForbidden, "This sign-in method is not enabled."},
	"INVALID_ID_TOKEN":                 {http.StatusUnauthorized, "Your session is invalid. Please sign in again."},
	"TOKEN_EXPIRED":                    {http.StatusUnauthorized, "Your session has expired. Please sign in again."},
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN":   {http.StatusUnauthorized, "Please sign in again to continue."},
	"INVALID_IDP_RESPONSE":             {http.StatusUnauthorized, "Google sign-in failed. Please try again."},
	"FEDERATED_USER_ID_ALREADY_LINKED": {http.StatusConflict, "This Google account is already linked to another user."},
}

// clientAliases maps client SDK codes onto the REST codes above.
var clientAliases = map[string]string{
	"auth/user-not-found":                           "EMAIL_NOT_FOUND",
	"auth/wrong-password":                           "INVALID_PASSWORD",
	"auth/invalid-credential":                       "INVALID_LOGIN_CREDENTIALS",
	"auth/missing-password":                         "MISSING_PASSWORD",
	"auth/user-disabled":                            "USER_DISABLED",
	"auth/email-already-in-use":                     "EMAIL_EXISTS",
	"auth/weak-password":                            "WEAK_PASSWORD",
	"auth/invalid-email":                            "INVALID_EMAIL",
	"auth/too-many-requests":                        "TOO_MANY_ATTEMPTS_TRY_LATER",
	"auth/operation-not-allowed":                    "OPERATION_NOT_ALLOWED",
	"auth/invalid-id-token":                         "INVALID_ID_TOKEN",
	"auth/id-token-expired":                         "TOKEN_EXPIRED",
	"auth/requires-recent-login":                    "CREDENTIAL_TOO_OLD_LOGIN_AGAIN",
	"auth/popup-closed-by-user":                     "INVALID_IDP_RESPONSE",
	"auth/account-exists-with-different-credential": "FEDERATED_USER_ID_ALREADY_LINKED",
}

// genericAuthError is returned for Firebase codes that have no entry.
var genericAuthError = common.NewAPIError(http.StatusBadRequest, "AUTH_ERROR", "Authentication failed. Please try again.")

// ErrorCode extracts the Firebase error code carried by err, or "" when it has none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var idErr *IdentityError
	if errors.As(err, &idErr) {
		return normalizeCode(idErr.Code)
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if gErr.Code >= http.StatusInternalServerError {
			return ""
		}
		if code := normalizeCode(gErr.Message); code != "" {
			return code
		}
		for _, item := range gErr.Errors {
			if code := normalizeCode(item.Message); code != "" {
				return code
			}
		}
		return ""
	}
	switch {
	case fbauth.IsUserNotFound(err):
		return "USER_NOT_FOUND"
	case fbauth.IsEmailAlreadyExists(err):
		return "EMAIL_EXISTS"
	case fbauth.IsUserDisabled(err):
		return "USER_DISABLED"
	case fbauth.IsIDTokenExpired(err):
		return "TOKEN_EXPIRED"
	case fbauth.IsIDTokenRevoked(err):
		return "CREDENTIAL_TOO_OLD_LOGIN_AGAIN"
	case fbauth.IsIDTokenInvalid(err):
		return "INVALID_ID_TOKEN"
	}
	return ""
}

// normalizeCode reduces messages like "WEAK_PASSWORD : Password should be..." and
// client codes like "auth/weak-password" to a REST code.
func normalizeCode(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if alias, ok := clientAliases[raw]; ok {
		return alias
	}
	if rest, ok := strings.CutPrefix(raw, "auth/"); ok {
		return strings.ToUpper(strings.ReplaceAll(rest, "-", "_"))
	}
	if i := strings.IndexAny(raw, " :"); i > 0 {
		raw = raw[:i]
	}
	for _, r := range raw {
		if !(r == '_' || (r >= 'A' && r <= 'Z')) {
			return ""
		}
	}
	return raw
}

// MapFirebaseError converts a Firebase Authentication failure into an APIError with a
// user-facing message. Errors that carry no Firebase code are treated as an unavailable upstream.
func MapFirebaseError(err error) *common.APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := common.IsAPIError(err); ok {
		return apiErr
	}
	code := ErrorCode(err)
	if code == "" {
		return common.ErrServiceUnavailable.WithDetails("The authentication service is unavailable. Please try again later.")
	}
	entry, ok := firebaseErrors[code]
	if !ok {
		return genericAuthError.WithDetails(code)
	}
	return common.NewAPIError(entry.status, code, entry.message)
}
