package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// maxDetail caps the length of storage error messages sent to clients.
const maxDetail = 240

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// FieldError is one entry of a 422 response.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func renderValidation(c *gin.Context, errs []FieldError) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": errs})
}

func renderDetail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"detail": truncate(err.Error(), maxDetail)})
}

// bodyErrors converts a binding error into field-level details.
func bodyErrors(err error) []FieldError {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		synErr  *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs):
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError(fe))
		}
		return out
	case errors.As(err, &typeErr):
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, strings.Split(typeErr.Field, ".")...)
		}
		return []FieldError{{
			Loc:  loc,
			Msg:  fmt.Sprintf("Input should be a valid %s, got %s", typeErr.Type, typeErr.Value),
			Type: "type_error",
		}}
	case errors.As(err, &synErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return []FieldError{{Loc: []string{"body"}, Msg: "JSON decode error: " + err.Error(), Type: "json_invalid"}}
	default:
		return []FieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
}

func fieldError(fe validator.FieldError) FieldError {
	loc := []string{"body"}
	// Namespace is "Struct.field.sub"; drop the struct name.
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		loc = append(loc, strings.Split(path, ".")...)
	} else {
		loc = append(loc, fe.Field())
	}
	if fe.Tag() == "required" {
		return FieldError{Loc: loc, Msg: "Field required", Type: "missing"}
	}
	return FieldError{Loc: loc, Msg: fmt.Sprintf("Field failed the %q rule", fe.Tag()), Type: fe.Tag()}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
