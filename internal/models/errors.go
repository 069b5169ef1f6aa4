package models

import "errors"

var (
	// ErrRecordNotFound 解析记录不存在错误
	ErrRecordNotFound = errors.New("parse record not found")

	// ErrInvalidParseStatus 无效的解析状态错误
	ErrInvalidParseStatus = errors.New("invalid parse status")
)
