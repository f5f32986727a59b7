package httputil

// Machine-readable error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequestBody     = "INVALID_REQUEST_BODY"
	CodeInvalidCredentialShape = "INVALID_CREDENTIAL_SHAPE"
	CodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeMissingAuth            = "MISSING_AUTH"
	CodeInvalidAuthHeader      = "INVALID_AUTH_HEADER"
	CodeServiceUnavailable     = "SERVICE_UNAVAILABLE"
	CodeInternalError          = "INTERNAL_ERROR"
)
