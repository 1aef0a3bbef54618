package core

import "errors"

// 错误码。
const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeNotSupported = "NOT_SUPPORTED"
	ErrorCodeUnavailable  = "UNAVAILABLE"
	ErrorCodeInvalidInput = "INVALID_INPUT"
)

// 产生错误的模块。
const (
	ModuleStore     = "store"
	ModuleCatalog   = "catalog"
	ModuleRecommend = "recommend"
	ModuleConfig    = "config"
)

// DomainError 是各模块对外返回的业务错误，按 Module + Code 分类。
// 经 fmt.Errorf("%w") 包装后仍可用 errors.Is / GetDomainError 识别。
type DomainError struct {
	Code    string
	Message string
	Module  string
}

func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{Module: module, Code: code, Message: message}
}

func (e *DomainError) Error() string { return e.Message }

// Is 按 Module + Code 匹配；target 带 Message 时还要求消息相同。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if e.Module != t.Module || e.Code != t.Code {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// GetDomainError 返回错误链上第一个 DomainError，没有则为 nil。
func GetDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

func IsDomainError(err error) bool { return GetDomainError(err) != nil }

// ErrMoodRequired 表示请求没有选择心情。打分时它等价于 mood_match = 0，
// 推荐入口在打分之前用它拒绝请求。
var ErrMoodRequired = NewDomainError(ModuleRecommend, ErrorCodeInvalidInput, "mood required")

func codeIs(err error, code string) bool {
	de := GetDomainError(err)
	return de != nil && de.Code == code
}

func IsNotFound(err error) bool     { return codeIs(err, ErrorCodeNotFound) }
func IsUnavailable(err error) bool  { return codeIs(err, ErrorCodeUnavailable) }
func IsInvalidInput(err error) bool { return codeIs(err, ErrorCodeInvalidInput) }
