package handlers

import (
	"ProductKeeper/internal/apperr"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = newValidator()

// newValidator называет поля в ошибках по их JSON-именам.
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

// errorBody тело ответа об ошибке.
type errorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

type responder struct {
	logger *zap.SugaredLogger
}

func (rs *responder) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rs.logger.Warnw("failed to encode response", "error", err)
	}
}

// writeError переводит ошибку в (статус, код, сообщение). Детали сбоев
// инфраструктуры остаются в логе и не попадают в ответ.
func (rs *responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindCollaborator {
		rs.logger.Errorw("request failed",
			"method", r.Method,
			"uri", r.RequestURI,
			"request_id", chimw.GetReqID(r.Context()),
			"op", e.Message,
			"error", e.Err,
		)
	} else {
		rs.logger.Infow("request rejected",
			"method", r.Method,
			"uri", r.RequestURI,
			"code", e.Code,
			"reason", e.Message,
		)
	}
	rs.writeJSON(w, e.Status(), errorBody{Code: e.Code, Message: e.PublicMessage()})
}

// decodeJSON читает тело запроса в dst, отклоняя неизвестные поля.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation(apperr.CodeInvalidField, "request body is empty")
		}
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return apperr.Validation(apperr.CodeUnknownField, "unknown field "+field)
		}
		return apperr.Validation(apperr.CodeInvalidField, "invalid request body")
	}
	return nil
}

// validateStruct проверяет теги validate и возвращает первую ошибку как InvalidField.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation(apperr.CodeInvalidField,
			fmt.Sprintf("field %s failed %q validation", fe.Field(), fe.Tag()))
	}
	return apperr.Validation(apperr.CodeInvalidField, "invalid request")
}
