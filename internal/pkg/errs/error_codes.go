/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in responses sent to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Message and Content Errors
const (
	// ErrMessageContentTooLong indicates that the message content exceeded the transport-layer length limit.
	ErrMessageContentTooLong = 2001
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates that the supplied username does not meet the format constraints.
	ErrInvalidUsername = 3001

	// ErrInvalidPassword indicates that the supplied password does not meet the length constraints.
	ErrInvalidPassword = 3002

	// ErrUserAlreadyExists indicates a registration attempt with a username that is already taken.
	ErrUserAlreadyExists = 3003

	// ErrInvalidCredentials indicates a failed login (wrong username or password).
	ErrInvalidCredentials = 3004

	// ErrUserNotFound indicates an operation referencing an identity absent from the user store.
	ErrUserNotFound = 3005

	// ErrUnauthorized indicates a request that requires authentication but carried no valid identity.
	ErrUnauthorized = 3006

	// ErrAlreadyLoggedIn indicates a register/login attempt by an already authenticated client.
	ErrAlreadyLoggedIn = 3007
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates a failure while talking to the avatar storage backend.
	ErrFileStorageFailed = 5001
)
