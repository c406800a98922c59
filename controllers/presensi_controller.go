package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/presensi/presensi-server/models"
	"github.com/presensi/presensi-server/services"
	"github.com/presensi/presensi-server/utils"
)

// PresensiView is the JSON shape of one attendance record.
type PresensiView struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"userId"`
	Nama      *string    `json:"nama"`
	CheckIn   time.Time  `json:"checkIn"`
	CheckOut  *time.Time `json:"checkOut"`
	Latitude  *string    `json:"latitude"`
	Longitude *string    `json:"longitude"`
	BuktiFoto *string    `json:"buktiFoto"`
	FotoURL   string     `json:"fotoUrl,omitempty"`
	Open      bool       `json:"open"`
}

func newPresensiView(p *models.Presensi) PresensiView {
	v := PresensiView{
		ID:        p.ID,
		UserID:    p.UserID,
		Nama:      p.Nama,
		CheckIn:   p.CheckIn,
		CheckOut:  p.CheckOut,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		BuktiFoto: p.BuktiFoto,
		Open:      p.IsOpen(),
	}
	if p.BuktiFoto != nil && *p.BuktiFoto != "" {
		v.FotoURL = "/uploads/" + *p.BuktiFoto
	}
	return v
}

type presensiPayload struct {
	Presensi PresensiView `json:"presensi"`
}

type statusPayload struct {
	CheckedIn bool          `json:"checkedIn"`
	Presensi  *PresensiView `json:"presensi"`
}

type historyPayload struct {
	Items      []PresensiView      `json:"items"`
	Pagination services.Pagination `json:"pagination"`
}

type checkInRequest struct {
	Latitude  string `form:"latitude" json:"latitude" binding:"max=32"`
	Longitude string `form:"longitude" json:"longitude" binding:"max=32"`
}

// PresensiController exposes the check-in/check-out lifecycle.
type PresensiController struct {
	svc    *services.PresensiService
	photos *utils.PhotoStore
}

func NewPresensiController(svc *services.PresensiService, photos *utils.PhotoStore) *PresensiController {
	return &PresensiController{svc: svc, photos: photos}
}

// CheckIn accepts JSON or multipart form data with an optional "image" file.
func (p *PresensiController) CheckIn(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}

	var req checkInRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBind(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40001, bindErrorMessage(err))
			return
		}
	}

	var photoRef *string
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		fh, err := ctx.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			// selfie is optional
		case err != nil:
			utils.Error(ctx, http.StatusBadRequest, 40011, "invalid image upload")
			return
		default:
			name, err := p.photos.SaveUpload(fh)
			if err != nil {
				p.photoError(ctx, err)
				return
			}
			photoRef = &name
		}
	}

	rec, err := p.svc.CheckIn(ctx.Request.Context(), actor.UserID, services.CheckInInput{
		Latitude:  optionalText(req.Latitude),
		Longitude: optionalText(req.Longitude),
		PhotoRef:  photoRef,
	})
	if err != nil {
		if photoRef != nil {
			p.removePhoto(*photoRef)
		}
		writeServiceError(ctx, err)
		return
	}
	utils.Created(ctx, "check-in successful", presensiPayload{Presensi: newPresensiView(rec)})
}

// CheckOut closes the caller's open session.
func (p *PresensiController) CheckOut(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	rec, err := p.svc.CheckOut(ctx.Request.Context(), actor.UserID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, "check-out successful", presensiPayload{Presensi: newPresensiView(rec)})
}

// Status reports whether the caller currently has an open session.
func (p *PresensiController) Status(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	rec, err := p.svc.Status(ctx.Request.Context(), actor.UserID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	out := statusPayload{CheckedIn: rec != nil}
	if rec != nil {
		v := newPresensiView(rec)
		out.Presensi = &v
	}
	utils.Success(ctx, "success", out)
}

// History pages through the caller's own records.
func (p *PresensiController) History(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", strconv.Itoa(services.DefaultPageSize)))

	recs, pg, err := p.svc.History(ctx.Request.Context(), actor.UserID, page, pageSize)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	items := make([]PresensiView, 0, len(recs))
	for i := range recs {
		items = append(items, newPresensiView(&recs[i]))
	}
	utils.Success(ctx, "success", historyPayload{Items: items, Pagination: pg})
}

// Update edits checkIn, checkOut or nama. Keys left out of the body keep their value.
func (p *PresensiController) Update(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	var req services.UpdateInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, bindErrorMessage(err))
		return
	}

	rec, err := p.svc.Update(ctx.Request.Context(), actor, id, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, "presensi updated", presensiPayload{Presensi: newPresensiView(rec)})
}

// Delete removes one of the caller's own records together with its photo.
func (p *PresensiController) Delete(ctx *gin.Context) {
	actor, ok := requireActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx)
	if !ok {
		return
	}

	rec, err := p.svc.Delete(ctx.Request.Context(), actor, id)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if rec.BuktiFoto != nil {
		p.removePhoto(*rec.BuktiFoto)
	}
	ctx.Status(http.StatusNoContent)
}

func (p *PresensiController) photoError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrPhotoTooLarge):
		utils.Error(ctx, http.StatusRequestEntityTooLarge, 41301, "image exceeds size limit")
	case errors.Is(err, utils.ErrPhotoInvalid):
		utils.Error(ctx, http.StatusBadRequest, 40012, "image must be a JPEG, PNG or GIF")
	default:
		utils.Logger.Error("failed to store photo", zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to store image")
	}
}

func (p *PresensiController) removePhoto(name string) {
	if err := p.photos.Remove(name); err != nil {
		utils.Logger.Warn("failed to remove photo", zap.String("file", name), zap.Error(err))
	}
}

func optionalText(s string) *string {
	s = utils.SanitizeText(s)
	if s == "" {
		return nil
	}
	return &s
}
