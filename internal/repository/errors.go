package repository

import "errors"

var (
	// 対象が見つからない
	ErrNotFound = errors.New("not found")

	// 一意制約違反
	ErrConflict = errors.New("conflict")
)
