package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Emanmohamedawad/DoDeal-admin-dashboard/internal/model"
)

// Kind 失败类别
//
// 替代逐处判断 .response / .request / data.details 的做法：
// 网络调用边界统一归类一次，上层只根据类别分流。
type Kind string

const (
	// KindDuplicate 邮箱唯一性冲突（HTTP 409）
	KindDuplicate Kind = "duplicate"
	// KindFieldValidation 服务端字段级校验失败（4xx 且带 details 数组）
	KindFieldValidation Kind = "field_validation"
	// KindGeneral 一般性 API 错误（4xx/5xx，单条 error 文本）
	KindGeneral Kind = "general"
	// KindNetwork 请求已发出但没有收到响应
	KindNetwork Kind = "network"
	// KindUnexpected 其余情况（响应不可解析等）
	KindUnexpected Kind = "unexpected"
)

const (
	networkFailureMessage = "Could not reach server"
	genericFailureMessage = "Something went wrong, please try again"
)

// Error 归类后的 API 失败
//
// Message 永远是可直接展示的字符串，绝不携带裸 error 对象。
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Details []model.FieldDetail

	cause error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// Unwrap 返回底层原因（日志诊断用）
func (e *Error) Unwrap() error {
	return e.cause
}

// errorBody 服务端失败响应的统一外形
type errorBody struct {
	Error   string              `json:"error"`
	Details []model.FieldDetail `json:"details,omitempty"`
}

// classify 把非 2xx 响应归类为 *Error
//
// 规则（按优先级）：
//  1. 409               → KindDuplicate
//  2. details 数组非空  → KindFieldValidation
//  3. error 文本非空    → KindGeneral
//  4. 其余              → KindUnexpected
func classify(resp *http.Response) *Error {
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var body errorBody
	decodeErr := json.Unmarshal(raw, &body)

	apiErr := &Error{Status: resp.StatusCode}

	switch {
	case resp.StatusCode == http.StatusConflict:
		apiErr.Kind = KindDuplicate
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		if apiErr.Message == "" {
			apiErr.Message = "Email already exists"
		}
	case decodeErr == nil && len(body.Details) > 0:
		apiErr.Kind = KindFieldValidation
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		if apiErr.Message == "" {
			apiErr.Message = "Validation failed"
		}
	case decodeErr == nil && body.Error != "":
		apiErr.Kind = KindGeneral
		apiErr.Message = body.Error
	default:
		apiErr.Kind = KindUnexpected
		apiErr.Message = genericFailureMessage
		if readErr != nil {
			apiErr.cause = readErr
		} else {
			apiErr.cause = decodeErr
		}
	}

	return apiErr
}

// AsError 从任意 error 中提取 *Error，非归类错误包一层 KindUnexpected
//
// 保证提交协调器拿到的永远是带展示文本的归类错误。
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*Error); ok {
		return apiErr
	}
	return &Error{Kind: KindUnexpected, Message: genericFailureMessage, cause: err}
}
