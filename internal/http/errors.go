package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"shopapi/internal/repository"
	"shopapi/internal/service"
)

func init() {
	// в ошибках валидации поля называются так же, как в JSON
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// fieldError элемент списка detail в ответе 422
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type errorResp struct {
	Detail string `json:"detail"`
}

type validationResp struct {
	Detail []fieldError `json:"detail"`
}

// bindingDetails переводит ошибку разбора/валидации тела в список полей
func bindingDetails(err error) []fieldError {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs):
		out := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldErrorFor(fe))
		}
		return out
	case errors.As(err, &typeErr):
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, typeErr.Field)
		}
		return []fieldError{{
			Loc:  loc,
			Msg:  "value is not a valid " + kindName(typeErr.Type.Kind()),
			Type: "type_error." + kindName(typeErr.Type.Kind()),
		}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return []fieldError{{Loc: []string{"body"}, Msg: "invalid json", Type: "value_error.jsondecode"}}
	default:
		return []fieldError{{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
}

// kindName имена типов в ошибках как у клиентов API: integer, float, str
func kindName(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	default:
		return k.String()
	}
}

func fieldErrorFor(fe validator.FieldError) fieldError {
	loc := []string{"body", fe.Field()}
	switch fe.Tag() {
	case "required":
		return fieldError{Loc: loc, Msg: "field required", Type: "value_error.missing"}
	case "min":
		return fieldError{Loc: loc, Msg: "ensure this value has at least " + fe.Param() + " characters", Type: "value_error.any_str.min_length"}
	default:
		return fieldError{Loc: loc, Msg: "failed on " + fe.Tag(), Type: "value_error." + fe.Tag()}
	}
}

func abortBinding(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, validationResp{Detail: bindingDetails(err)})
}

func abortBadID(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, validationResp{Detail: []fieldError{{
		Loc:  []string{"path", "id"},
		Msg:  "value is not a valid integer",
		Type: "type_error.integer",
	}}})
}

// abortError отвечает ошибкой сервиса; notFound — текст для 404 конкретной сущности
func abortError(c *gin.Context, err error, notFound string) {
	status := mapErrorToStatus(err)
	switch status {
	case http.StatusNotFound:
		c.JSON(status, errorResp{Detail: notFound})
	case http.StatusBadRequest:
		c.JSON(status, errorResp{Detail: "Delete related orders first."})
	case http.StatusUnprocessableEntity:
		c.JSON(status, validationResp{Detail: []fieldError{invalidInputDetail(err)}})
	default:
		log.Printf("%s %s: %+v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, errorResp{Detail: "internal error"})
	}
}

func invalidInputDetail(err error) fieldError {
	var fe *service.FieldError
	if errors.As(err, &fe) {
		return fieldError{Loc: []string{"body", fe.Field}, Msg: fe.Msg, Type: "value_error.any_str.min_length"}
	}
	return fieldError{Loc: []string{"body"}, Msg: err.Error(), Type: "value_error"}
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrHasOrders):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
