package apperrors

type Type string

const (
	TypeValidation Type = "validation"
	TypeNotFound   Type = "not_found"
	TypeConflict   Type = "conflict"
	TypeInternal   Type = "internal"
)

const (
	CodeConfiguration   = "configuration_error"
	CodeDerivation      = "derivation_error"
	CodeEncoding        = "encoding_error"
	CodeOracleQuery     = "oracle_query_failed"
	CodeStoreRead       = "store_read_failed"
	CodeStoreWrite      = "store_write_failed"
	CodeStoreDelete     = "store_delete_failed"
	CodePoolStateBroken = "pool_state_invalid"
)

type AppError struct {
	Type    Type           `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func NewInternal(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeInternal,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewValidation(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewNotFound(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeNotFound,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewConflict(code, message string, details map[string]any) *AppError {
	return &AppError{
		Type:    TypeConflict,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewConfiguration reports malformed or missing wallet configuration. It is
// never retried.
func NewConfiguration(message string, details map[string]any) *AppError {
	return NewValidation(CodeConfiguration, message, details)
}

// Is matches on Code so callers can compare against a template error with
// errors.Is.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	if !ok || e == nil || other == nil {
		return false
	}

	return e.Code == other.Code
}
