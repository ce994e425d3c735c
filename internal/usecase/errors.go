package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"coderr/internal/logger"

	"go.uber.org/zap"
)

type HTTPError struct {
	Status  int
	Message string
	//400のときだけ。フィールド名 -> メッセージ
	Fields FieldErrors
}

func (e *HTTPError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 入力エラーをフィールドごとに集める
type FieldErrors map[string][]string

func (f FieldErrors) Add(field string, msg string) {
	f[field] = append(f[field], msg)
}

// 1つもなければnil
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: "validation error",
		Fields:  f,
	}
}

// 1フィールドだけの入力エラー
func NewValidationError(field string, msg string) error {
	fe := FieldErrors{}
	fe.Add(field, msg)
	return fe.Err()
}

const msgRequired = "This field is required."

// 原因はログに残し、外には db error だけ返す
func dbError(ctx context.Context, log *zap.Logger, op string, err error) error {
	logger.FromContext(ctx, log).Error("db error", zap.String("op", op), zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "db error")
}

// WithinTxの戻り値を整える（commit失敗などはdb errorにする）
func txResult(ctx context.Context, log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}
	return dbError(ctx, log, op, err)
}
