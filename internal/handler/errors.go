package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func init() {
	//priceは文字列ではなく数値で返す
	decimal.MarshalJSONWithoutQuotes = true
}

type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Fields: he.Fields})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// Bindの失敗。型が違うときはフィールド名つきの400にする
func bindError(c echo.Context, err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation error",
			Fields: map[string][]string{ute.Field: {typeMessage(ute.Type)}},
		})
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func typeMessage(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "Invalid value."
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.String:
		return "Not a valid string."
	case reflect.Slice, reflect.Array:
		return "Expected a list of items."
	case reflect.Bool:
		return "Must be a valid boolean."
	default:
		return "Invalid value."
	}
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
