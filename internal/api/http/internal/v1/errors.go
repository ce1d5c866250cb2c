package v1

// Errors
const (
	UnknownErrorCode    = 0
	UnknownErrorMessage = "unknown error"

	IdentityAlreadyExistsCode    = 1001
	IdentityAlreadyExistsMessage = "identity already exists"
	IdentityNotFoundCode         = 1002
	IdentityNotFoundMessage      = "identity not found"
	SessionNotFoundCode          = 1003
	SessionNotFoundMessage       = "session not found"
	SessionExpiredCode           = 1004
	SessionExpiredMessage        = "session expired"
	SessionInvalidCode           = 1005
	SessionInvalidMessage        = "session invalid"

	RateLimitedCode           = 2001
	RateLimitedMessage        = "too many requests, try again later"
	AccountLockedCode         = 2002
	AccountLockedMessage      = "too many failed attempts, try again later"
	InvalidOrExpiredCode      = 2003
	InvalidOrExpiredMessage   = "invalid or expired"
	DeliveryFailureCode       = 2004
	DeliveryFailureMessage    = "could not send email, try again later"
	InvalidRequestBodyCode    = 2005
	InvalidRequestBodyMessage = "invalid request body"

	ValidationErrorCode    = 6000
	ValidationErrorMessage = "Validation error"
)

type ErrorCode int
type ErrorMessage string

type ErrorStruct struct {
	ErrorCode       `json:"error_code"`
	ErrorMessage    `json:"error_message"`
	CooldownMinutes int `json:"cooldown_minutes,omitempty"`
} // @name ErrorStruct

type ValidationErrorStruct struct {
	ErrorCode    int               `json:"error_code"`
	ErrorMessage string            `json:"error_message"`
	Errors       []ValidationError `json:"validation_errors"`
} // @name ValidationErrorStruct

type ValidationError struct {
	FieldKey     string `json:"field_key"`
	ErrorMessage string `json:"error_message"`
}

var errorMessages = map[ErrorCode]ErrorMessage{
	IdentityAlreadyExistsCode: IdentityAlreadyExistsMessage,
	IdentityNotFoundCode:      IdentityNotFoundMessage,
	SessionNotFoundCode:       SessionNotFoundMessage,
	SessionExpiredCode:        SessionExpiredMessage,
	SessionInvalidCode:        SessionInvalidMessage,
	RateLimitedCode:           RateLimitedMessage,
	AccountLockedCode:         AccountLockedMessage,
	InvalidOrExpiredCode:      InvalidOrExpiredMessage,
	DeliveryFailureCode:       DeliveryFailureMessage,
	InvalidRequestBodyCode:    InvalidRequestBodyMessage,
}

func getErrorStruct(code ErrorCode) *ErrorStruct {
	errorStruct := &ErrorStruct{
		ErrorCode:    UnknownErrorCode,
		ErrorMessage: UnknownErrorMessage,
	}

	if msg, ok := errorMessages[code]; ok {
		errorStruct.ErrorCode = code
		errorStruct.ErrorMessage = msg
	}

	return errorStruct
}
