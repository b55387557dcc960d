// Package fault 定义核心层统一的错误分类，供 HTTP 层翻译为状态码.
// 核心自身不感知传输协议，只保证 (Kind, message) 稳定.
package fault

import (
	"errors"
	"fmt"
)

// Kind 错误类别.
type Kind int

const (
	// KindUnknown 未分类错误.
	KindUnknown Kind = iota
	// KindNotFound 资源/链接/授权不存在，或对调用方不可见.
	KindNotFound
	// KindForbidden 角色已解析但权限不足.
	KindForbidden
	// KindConflict 状态冲突，例如把文件夹移动到自己的子树下.
	KindConflict
	// KindTransient 存储超时或暂不可用，调用方可安全重试.
	KindTransient
	// KindPartial 级联操作部分完成，Failed 列出未完成的子项.
	KindPartial
)

// String 返回类别的字符串表示.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	case KindPartial:
		return "partial_failure"
	default:
		return "unknown"
	}
}

// Error 携带类别的错误，可通过 errors.As 提取.
type Error struct {
	kind   Kind
	msg    string
	cause  error
	failed []string
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}

	return e.msg
}

// Unwrap 返回底层原因.
func (e *Error) Unwrap() error { return e.cause }

// Kind 返回错误类别.
func (e *Error) Kind() Kind { return e.kind }

// Failed 返回部分失败时未完成的子项标识（仅 KindPartial 使用）.
func (e *Error) Failed() []string { return e.failed }

// New 构造指定类别的错误.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并标注类别.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// NotFound 构造 KindNotFound 错误.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Forbidden 构造 KindForbidden 错误.
func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// Conflict 构造 KindConflict 错误.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// Transient 包装存储层错误为可重试错误.
func Transient(cause error, format string, args ...any) *Error {
	return Wrap(KindTransient, cause, format, args...)
}

// Partial 构造部分失败错误，failed 为未完成子项的标识列表.
func Partial(failed []string, format string, args ...any) *Error {
	e := New(KindPartial, format, args...)
	e.failed = failed

	return e
}

// KindOf 提取错误类别，非 fault 错误返回 KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}

	return KindUnknown
}

// Is 判断错误是否属于指定类别.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable 报告错误是否可安全重试（仅 KindTransient）.
func Retryable(err error) bool {
	return Is(err, KindTransient)
}

// FailedItems 提取部分失败错误携带的子项列表.
func FailedItems(err error) []string {
	var fe *Error
	if errors.As(err, &fe) && fe.kind == KindPartial {
		return fe.failed
	}

	return nil
}
