package errors

import (
	"errors"
	"fmt"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 请求边界错误
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// 分类管线业务错误
	ErrCodeParentNotFound       ErrorCode = "PARENT_NOT_FOUND"
	ErrCodeFileNotFound         ErrorCode = "FILE_NOT_FOUND"
	ErrCodeCategoryExistsNoFile ErrorCode = "CATEGORY_EXISTS_NO_FILE"

	// 内部不变量错误
	ErrCodeClassificationUnresolved ErrorCode = "CLASSIFICATION_UNRESOLVED"

	// 持久化错误
	ErrCodePersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
)

// AppError 应用错误结构体
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause 添加错误原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// New 创建应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewInvalidRequest 创建请求格式错误
func NewInvalidRequest(message string) *AppError {
	return New(ErrCodeInvalidRequest, message)
}

// NewParentNotFound 创建父分类未找到错误
func NewParentNotFound(parentID string) *AppError {
	return New(ErrCodeParentNotFound, fmt.Sprintf("parent category %s not found", parentID))
}

// NewFileNotFound 创建文件未找到错误
func NewFileNotFound(fileID string) *AppError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file %s not found", fileID))
}

// NewClassificationUnresolved 创建分类未解析错误
func NewClassificationUnresolved(categoryID string) *AppError {
	return New(ErrCodeClassificationUnresolved,
		fmt.Sprintf("similarity search returned no candidate for subtree %s", categoryID))
}

// NewPersistenceFailure 创建持久化失败错误
func NewPersistenceFailure(cause error) *AppError {
	return New(ErrCodePersistenceFailure, "failed to commit unit of work").WithCause(cause)
}

// CodeOf 提取错误码，非AppError一律按持久化/系统错误处理
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodePersistenceFailure
}

// IsAppError 检查是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}
