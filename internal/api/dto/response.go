package dto

// ErrorResponse 失败时的返回体，只包含对外可见的错误信息
type ErrorResponse struct {
	Error string `json:"error"`
}
