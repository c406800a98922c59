package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/presensi/presensi-server/services"
	"github.com/presensi/presensi-server/utils"
)

type byDateQuery struct {
	Tanggal string `form:"tanggal" binding:"omitempty,datetime=2006-01-02"`
}

// ReportController serves the admin attendance reports.
type ReportController struct {
	svc *services.ReportService
}

func NewReportController(svc *services.ReportService) *ReportController {
	return &ReportController{svc: svc}
}

// Daily lists records filtered by nama, tanggalMulai and tanggalSelesai.
func (r *ReportController) Daily(ctx *gin.Context) {
	var q services.ReportFilter
	if err := ctx.ShouldBindQuery(&q); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, bindErrorMessage(err))
		return
	}
	rows, err := r.svc.DailyReport(ctx.Request.Context(), q)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, "success", rows)
}

// ByDate lists the records of one calendar day, today when tanggal is omitted.
func (r *ReportController) ByDate(ctx *gin.Context) {
	var q byDateQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, bindErrorMessage(err))
		return
	}
	report, err := r.svc.DailyReportByDate(ctx.Request.Context(), q.Tanggal)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	utils.Success(ctx, "success", report)
}

// Export streams the daily report as an XLSX attachment.
func (r *ReportController) Export(ctx *gin.Context) {
	var q services.ReportFilter
	if err := ctx.ShouldBindQuery(&q); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, bindErrorMessage(err))
		return
	}
	body, err := r.svc.ExportDailyReport(ctx.Request.Context(), q)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", services.ExportFileName(q)))
	ctx.Data(http.StatusOK, services.XLSXMIMEType, body)
}
