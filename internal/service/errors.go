package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrEntityNotFound   = errors.New("实体不存在")
	ErrStoreUnavailable = errors.New("存储服务暂不可用，请稍后重试")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:     BadRequest,
	ErrEntityNotFound:   NotFound,
	ErrStoreUnavailable: InternalServerError,
	UnExpectedError:     InternalServerError,
}
