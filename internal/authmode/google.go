package authmode

// Google sign-in error codes surfaced on the callback redirect.
const (
	GoogleErrOAuthCallback         = "OAuthCallback"
	GoogleErrOAuthAccountNotLinked = "OAuthAccountNotLinked"
	GoogleErrAccessDenied          = "AccessDenied"
	GoogleErrVerification          = "Verification"
)

// GoogleErrorMessage maps a Google sign-in error code to the message shown
// to the user. Unknown codes get a generic fallback.
func GoogleErrorMessage(code string) string {
	switch code {
	case GoogleErrOAuthCallback:
		return "Google sign-in was cancelled or failed. Please try again."
	case GoogleErrOAuthAccountNotLinked:
		return "This email is already registered with a different sign-in method."
	case GoogleErrAccessDenied:
		return "Access denied. Please grant permission to continue."
	case GoogleErrVerification:
		return "Unable to verify your Google account. Please try again."
	default:
		return "Google sign-in failed. Please try again or use email registration."
	}
}
