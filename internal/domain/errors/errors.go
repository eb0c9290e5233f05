package errors

import (
	"net/http"

	"cinescope/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Stable business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types. The error codes are the wire-level contract and
// must stay stable across releases.
var (
	// Input validation
	ErrEmailPasswordRequired = NewBaseError(
		http.StatusBadRequest,
		"email_e_senha_obrigatorios",
		"Email e senha são obrigatórios",
		"",
	)

	ErrNameRequired = NewBaseError(
		http.StatusBadRequest,
		"nome_obrigatorio",
		"Nome é obrigatório",
		"",
	)

	ErrEmailRequired = NewBaseError(
		http.StatusBadRequest,
		"email_obrigatorio",
		"Email é obrigatório",
		"",
	)

	ErrPasswordRequired = NewBaseError(
		http.StatusBadRequest,
		"senha_obrigatoria",
		"Senha é obrigatória",
		"",
	)

	ErrEmailInvalid = NewBaseError(
		http.StatusBadRequest,
		"email_invalido",
		"Email inválido",
		"",
	)

	ErrWeakPassword = NewBaseError(
		http.StatusBadRequest,
		"senha_fraca",
		"A senha não atende aos requisitos de segurança",
		"",
	)

	// Authentication
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"credenciais_invalidas",
		"Email ou senha incorretos",
		"",
	)

	ErrWrongPassword = NewBaseError(
		http.StatusUnauthorized,
		"senha_incorreta",
		"Senha incorreta",
		"",
	)

	ErrTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"token_invalido",
		"Token inválido ou expirado",
		"",
	)

	ErrTokenExpired = NewBaseError(
		http.StatusUnauthorized,
		"token_expirado",
		"Sessão antiga demais para esta operação, faça login novamente",
		"",
	)

	// Account state
	ErrEmailTaken = NewBaseError(
		http.StatusConflict,
		"email_ja_cadastrado",
		"Este email já está cadastrado",
		"",
	)

	ErrAccountLocked = NewBaseError(
		http.StatusTooManyRequests,
		"conta_bloqueada",
		"Conta temporariamente bloqueada por excesso de tentativas",
		"",
	)

	ErrAccountDisabled = NewBaseError(
		http.StatusForbidden,
		"conta_desabilitada",
		"Esta conta está desabilitada",
		"",
	)

	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"usuario_nao_encontrado",
		"Usuário não encontrado",
		"",
	)

	ErrNotPendingDeletion = NewBaseError(
		http.StatusConflict,
		"conta_nao_marcada_exclusao",
		"Conta não está marcada para exclusão",
		"",
	)

	ErrAlreadyPendingDeletion = NewBaseError(
		http.StatusConflict,
		"conta_ja_marcada_exclusao",
		"Conta já está marcada para exclusão",
		"",
	)

	ErrDeadlineExpired = NewBaseError(
		http.StatusForbidden,
		"prazo_expirado",
		"O prazo de reativação desta conta expirou",
		"",
	)

	// Throttling
	ErrRateLimited = NewBaseError(
		http.StatusTooManyRequests,
		"rate_limit_exceeded",
		"Muitas requisições, tente novamente mais tarde",
		"",
	)

	ErrTooManyAttempts = NewBaseError(
		http.StatusTooManyRequests,
		"muitas_tentativas",
		"Muitas tentativas, tente novamente mais tarde",
		"",
	)

	// Operator-actionable configuration problems
	ErrAPIDisabled = NewBaseError(
		http.StatusInternalServerError,
		"api_nao_habilitada",
		"Autenticação por senha não está habilitada no provedor",
		"habilite o provedor email/senha no console do projeto",
	)

	ErrAPIKeyInvalid = NewBaseError(
		http.StatusInternalServerError,
		"api_key_invalida",
		"Chave de API do provedor de identidade inválida",
		"verifique a variável FIREBASE_WEBAPIKEY",
	)

	// General
	ErrInternal = NewBaseError(
		http.StatusInternalServerError,
		"erro_interno",
		"Erro interno do servidor",
		"",
	)
)
