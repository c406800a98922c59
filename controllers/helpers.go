package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/presensi/presensi-server/middleware"
	"github.com/presensi/presensi-server/services"
	"github.com/presensi/presensi-server/utils"
)

// currentActor reads the identity stored by middleware.AuthRequired.
func currentActor(ctx *gin.Context) (services.Actor, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return services.Actor{}, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return services.Actor{}, false
	}
	return services.Actor{UserID: id, Role: ctx.GetString(middleware.ContextRoleKey)}, true
}

func requireActor(ctx *gin.Context) (services.Actor, bool) {
	actor, ok := currentActor(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
	}
	return actor, ok
}

func parseIDParam(ctx *gin.Context) (uint, bool) {
	raw := strings.TrimSpace(ctx.Param("id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid record id")
		return 0, false
	}
	return uint(id), true
}

// writeServiceError maps a service failure onto the response envelope.
func writeServiceError(ctx *gin.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		se = &services.Error{Kind: services.KindInternal, Message: "internal server error", Err: err}
	}

	switch se.Kind {
	case services.KindValidation:
		utils.Error(ctx, http.StatusBadRequest, 40002, se.Message)
	case services.KindConflict:
		utils.Error(ctx, http.StatusBadRequest, 40901, se.Message)
	case services.KindInvalidState:
		utils.Error(ctx, http.StatusBadRequest, 40902, se.Message)
	case services.KindNotFound:
		utils.Error(ctx, http.StatusNotFound, 40401, se.Message)
	case services.KindForbidden:
		utils.Error(ctx, http.StatusForbidden, 40301, se.Message)
	default:
		utils.Logger.Error("request failed",
			zap.String("path", ctx.FullPath()),
			zap.String("reason", se.Message),
			zap.Error(se.Err),
		)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}

// bindErrorMessage turns binding failures into a readable message.
func bindErrorMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid request payload"
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", lowerFirst(fe.Field())))
		case "datetime":
			parts = append(parts, fmt.Sprintf("%s must use format %s", lowerFirst(fe.Field()), fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", lowerFirst(fe.Field())))
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s violates %s=%s", lowerFirst(fe.Field()), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", lowerFirst(fe.Field())))
		}
	}
	return strings.Join(parts, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
