package model

// 表单字段名
const (
	FieldName   = "name"
	FieldEmail  = "email"
	FieldGender = "gender"
	FieldPhone  = "phone"
)

// 字段错误码
//
// 客户端校验只产生符号化错误码；自由文本仅出现在服务端来源的字段错误中，
// 两者共用同一个错误槽位，渲染时不做区分。
const (
	CodeRequired  = "required"
	CodeMin       = "min"
	CodeMax       = "max"
	CodeFormat    = "format"
	CodeInvalid   = "invalid"
	CodeDuplicate = "duplicate"
)

// FieldErrors 字段名到错误码（或服务端错误文本）的映射
type FieldErrors map[string]string

// Has 指定字段是否存在错误
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Clone 返回副本，nil 安全
func (e FieldErrors) Clone() FieldErrors {
	if e == nil {
		return nil
	}
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// FieldDetail 服务端返回的单条字段级错误
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SubmissionStatus 表单提交状态
type SubmissionStatus string

const (
	StatusIdle       SubmissionStatus = "idle"
	StatusSubmitting SubmissionStatus = "submitting"
	StatusSucceeded  SubmissionStatus = "succeeded"
	StatusFailed     SubmissionStatus = "failed"
)
