package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/KotFed0t/vc_portfolio_dashboard/internal/service"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, apiResponse{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// respondErr maps service errors onto status codes. Field errors go to meta.fields.
func respondErr(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		Error(c, http.StatusBadRequest, "validation failed", map[string]any{"fields": verr.Fields})
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, service.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, service.ErrAlreadyExists):
		Error(c, http.StatusConflict, "already exists", nil)
	case errors.Is(err, service.ErrStorageDisabled):
		Error(c, http.StatusServiceUnavailable, "file storage is disabled", nil)
	case errors.Is(err, service.ErrUnavailable):
		slog.Error("backend unavailable", slog.String("rqID", utils.GetRequestIDFromCtx(c.Request.Context())), slog.String("err", err.Error()))
		Error(c, http.StatusBadGateway, "backend unavailable, try again", nil)
	default:
		slog.Error("unhandled error", slog.String("rqID", utils.GetRequestIDFromCtx(c.Request.Context())), slog.String("err", err.Error()))
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}

// bindJSON decodes the body and reports binding failures per field.
func bindJSON(c *gin.Context, dest any) bool {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		Error(c, http.StatusBadRequest, "validation failed", map[string]any{"fields": fields})
		return false
	}

	Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json tag.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		Error(c, http.StatusBadRequest, name+" must be a uuid", nil)
		return uuid.Nil, false
	}
	return id, true
}
