package models

// User-facing message catalog. These strings are part of the client
// contract; tests assert on them verbatim, so edits here are breaking.
const (
	MsgLoginSuccess            = "Signed in successfully!"
	MsgLoginInvalidCredentials = "Invalid username/email or password. Please try again."
	MsgUsernameOrEmailRequired = "Username or email is required"

	MsgRegistrationSuccess       = "User registered successfully"
	MsgRegistrationMissingFields = "Missing required fields"

	MsgForgotPasswordSuccess    = "If an account with this email exists, you will receive a password reset link."
	MsgForgotPasswordNoPassword = "This account does not have a password set. Please use Google sign-in."

	MsgResetPasswordSuccess       = "Password reset successfully"
	MsgResetPasswordInvalidToken  = "Invalid or expired reset token"
	MsgResetPasswordFieldsMissing = "Token and password are required"

	MsgEmailRequired      = "Email is required"
	MsgEmailInvalidFormat = "Invalid email format"
	MsgEmailTaken         = "Email is already registered"

	MsgPasswordRequired  = "Password is required"
	MsgPasswordMinLength = "Password must be at least 6 characters"

	MsgUsernameRequired  = "Username is required"
	MsgUsernameMinLength = "Username must be at least 3 characters"
	MsgUsernameTaken     = "Username is already taken"

	MsgNameRequired = "Name is required"

	MsgInternalError = "Internal server error"
)
