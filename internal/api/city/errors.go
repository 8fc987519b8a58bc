package city

import (
	"errors"
	"fmt"
)

// TransportError 传输层错误：网络失败、5xx 或响应体无法解析
// 客户端不决定重试策略，由调用方处理
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("city: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// BusinessError 业务层错误：后端正常响应但拒绝了请求（如停车区不存在）
// Message 为后端返回的原文
type BusinessError struct {
	Op      string
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("city: %s: %s", e.Op, e.Message)
}

// IsTransportError 判断是否为传输层错误
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsBusinessError 判断是否为业务层错误
func IsBusinessError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}
