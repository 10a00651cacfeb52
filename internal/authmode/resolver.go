// Package authmode resolves which authentication form a request should
// see from untrusted URL query parameters, and computes the normalized
// query the browser URL should be rewritten to.
package authmode

import "net/url"

// Mode is the authentication form to display.
type Mode string

const (
	ModeLogin          Mode = "login"
	ModeRegister       Mode = "register"
	ModeForgotPassword Mode = "forgotPassword"
	ModeResetPassword  Mode = "resetPassword"
)

// ParseMode reports whether s names a recognized mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeLogin, ModeRegister, ModeForgotPassword, ModeResetPassword:
		return Mode(s), true
	}
	return "", false
}

// Severity classifies a notification.
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Notification is a user-facing message surfaced alongside the form.
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Resolution is the outcome of resolving a raw query string.
type Resolution struct {
	// Mode is the form to render.
	Mode Mode
	// Query is the normalized query the URL should carry.
	Query url.Values
	// Rewrite is true when the original query differs from Query and the
	// browser URL should be replaced (no new history entry).
	Rewrite bool
	// Notification carries a mapped OAuth error, if one was present.
	Notification *Notification
	// ResetToken is the token to seed the reset form with, set only for
	// ModeResetPassword.
	ResetToken string
}

// recognized query keys, everything else is stripped
const (
	keyMode        = "mode"
	keyResetToken  = "reset_token"
	keyError       = "error"
	keyCallbackURL = "callbackUrl"
)

// Resolve derives a display mode from raw query parameters and normalizes
// them. The rules, applied until the query is stable:
//
//  1. An OAuth error parameter becomes an error notification; error and
//     callbackUrl are always stripped.
//  2. Unrecognized keys are stripped.
//  3. Duplicate mode keys conflict: resetPassword wins when a non-empty
//     reset_token is present, otherwise the first recognized value does.
//  4. A missing or unrecognized mode resolves to login, dropping any token.
//  5. resetPassword without a token falls back to login.
//  6. A token alongside any other mode is dropped.
func Resolve(query url.Values) Resolution {
	res := Resolution{}

	if code := query.Get(keyError); code != "" {
		res.Notification = &Notification{
			Severity: SeverityError,
			Message:  GoogleErrorMessage(code),
		}
	}

	modes := recognizedModes(query[keyMode])
	token := query.Get(keyResetToken)

	switch {
	case len(modes) == 0:
		res.Mode = ModeLogin
	case tokenWinsConflict(modes, token):
		res.Mode = ModeResetPassword
	default:
		res.Mode = modes[0]
	}

	if res.Mode == ModeResetPassword && token == "" {
		res.Mode = ModeLogin
	}

	canonical := url.Values{}
	canonical.Set(keyMode, string(res.Mode))
	if res.Mode == ModeResetPassword {
		canonical.Set(keyResetToken, token)
		res.ResetToken = token
	}

	res.Query = canonical
	res.Rewrite = query.Encode() != canonical.Encode()
	return res
}

func recognizedModes(raw []string) []Mode {
	var modes []Mode
	for _, s := range raw {
		if m, ok := ParseMode(s); ok {
			modes = append(modes, m)
		}
	}
	return modes
}

// tokenWinsConflict reports whether duplicate mode values should collapse
// to resetPassword because one occurrence names it and a token is present.
func tokenWinsConflict(modes []Mode, token string) bool {
	if len(modes) < 2 || token == "" {
		return false
	}
	for _, m := range modes {
		if m == ModeResetPassword {
			return true
		}
	}
	return false
}
