package usecase

import (
	"errors"
	"fmt"
)

// Usecaseが返す型付きエラー。Handlerがそのままステータスに落とす。
// 404=NotFound / 409=Conflict / 400=Validation / 500=Internal
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}
