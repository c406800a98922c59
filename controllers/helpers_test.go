package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/presensi/presensi-server/middleware"
	"github.com/presensi/presensi-server/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteServiceErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{services.ErrOpenSessionExists, http.StatusBadRequest},
		{services.ErrNoOpenSession, http.StatusBadRequest},
		{services.ErrEmptyUpdate, http.StatusBadRequest},
		{services.ErrRecordNotFound, http.StatusNotFound},
		{services.ErrNotOwner, http.StatusForbidden},
		{errors.New("driver exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(w)
		ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		writeServiceError(ctx, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.NotContains(t, w.Body.String(), "driver exploded")
	}
}

func TestBindErrorMessage(t *testing.T) {
	type query struct {
		Tanggal string `validate:"datetime=2006-01-02"`
		Email   string `validate:"required"`
	}
	err := validator.New().Struct(query{Tanggal: "kemarin"})
	msg := bindErrorMessage(err)
	assert.Contains(t, msg, "tanggal must use format 2006-01-02")
	assert.Contains(t, msg, "email is required")

	assert.Equal(t, "invalid request payload", bindErrorMessage(errors.New("EOF")))
}

func TestCurrentActor(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := currentActor(ctx)
	assert.False(t, ok)

	ctx.Set(middleware.ContextUserIDKey, uint(3))
	ctx.Set(middleware.ContextRoleKey, "admin")
	actor, ok := currentActor(ctx)
	assert.True(t, ok)
	assert.True(t, actor.IsAdmin())
	assert.Equal(t, uint(3), actor.UserID)
}
