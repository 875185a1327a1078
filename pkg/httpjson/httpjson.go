// Package httpjson writes JSON responses and decodes validated JSON requests.
package httpjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Error messages shared by every handler.
const (
	MsgInvalidJSON = "تنسيق JSON غير صحيح"
	MsgInvalidID   = "معرف غير صحيح"
	MsgInternal    = "حدث خطأ داخلي في الخادم"
	MsgNotFound    = "العنصر غير موجود"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string      `json:"error"`
	Field string      `json:"field,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

// MessageResponse is the body of plain success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

func Write(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, ErrorResponse{Error: msg})
}

func Message(w http.ResponseWriter, status int, msg string) {
	Write(w, status, MessageResponse{Message: msg})
}

// Decode reads a JSON body into dst and runs struct validation on it. On
// failure the error response is already written and false is returned.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, MsgInvalidJSON)
		return false
	}
	if err := Validate.Struct(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	fe := verrs[0]
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("الحقل المطلوب مفقود: %s", field)
	case "oneof":
		msg = fmt.Sprintf("قيمة غير صحيحة للحقل %s، القيم المسموحة: %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("قيمة غير صحيحة للحقل %s", field)
	}
	Write(w, http.StatusBadRequest, ErrorResponse{Error: msg, Field: field, Value: fe.Value()})
}

// IDParam parses a positive integer chi URL parameter.
func IDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
