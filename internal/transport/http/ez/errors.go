package ez

import (
	"errors"

	"go-gin-storefront/internal/domain"
	resp "go-gin-storefront/internal/transport/http/response"
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// FromDomain maps any error onto the HTTP taxonomy. Client errors keep their message;
// anything unrecognised becomes a generic 500 with the cause kept in Err for logging.
func FromDomain(err error) *AErr {
	if err == nil {
		return nil
	}
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	code := resp.CodeServerError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		code = resp.CodeUnauthorized
	case errors.Is(err, domain.ErrBlocked), errors.Is(err, domain.ErrForbidden):
		code = resp.CodeForbidden
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrNotFound):
		code = resp.CodeNotFound
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrEmptyCart):
		code = resp.CodeBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrDuplicate):
		code = resp.CodeConflict
	}
	if code == resp.CodeServerError {
		return &AErr{Code: code, Msg: "internal error", Err: err}
	}
	return &AErr{Code: code, Msg: err.Error(), Err: err}
}
