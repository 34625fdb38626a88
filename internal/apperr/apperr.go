package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别，决定 HTTP 状态码
type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindSignatureMismatch
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string // 可返回给客户端的信息
	Err     error  // 原始错误，仅用于日志
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func SignatureMismatch(message string) *Error {
	return &Error{Kind: KindSignatureMismatch, Message: message}
}

// Upstream 网关或数据库失败，message 是对外的通用提示
func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf 返回错误类别，非 *Error 一律视为 KindUpstream
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Is 判断错误类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status 类别对应的 HTTP 状态码
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindSignatureMismatch:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message 对外的错误信息
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
