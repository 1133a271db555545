package handler

import (
	"ViewCounter/internal/api/dto"
	"ViewCounter/internal/pkg/response"
	"ViewCounter/internal/service"

	"github.com/gin-gonic/gin"
)

type ViewCounterHandler struct {
	viewCounterSvc service.ViewCounterService
	viewMetricSvc  service.ViewMetricService
}

func NewViewCounterHandler(viewCounterSvc service.ViewCounterService, viewMetricSvc service.ViewMetricService) *ViewCounterHandler {
	return &ViewCounterHandler{
		viewCounterSvc: viewCounterSvc,
		viewMetricSvc:  viewMetricSvc,
	}
}

// GetViews 读取阅读量
func (h *ViewCounterHandler) GetViews(c *gin.Context) {
	res, err := h.viewCounterSvc.GetViewCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// IncrementViews 阅读量 +1，返回自增后的值
func (h *ViewCounterHandler) IncrementViews(c *gin.Context) {
	res, err := h.viewCounterSvc.IncrementViewCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetViewTrend 阅读量 7 / 30 天趋势
func (h *ViewCounterHandler) GetViewTrend(c *gin.Context) {
	var query dto.ViewTrendQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	// 不传 days 默认 7 天
	if query.Days == 0 {
		query.Days = 7
	}

	res, err := h.viewMetricSvc.GetViewTrend(c.Request.Context(), c.Param("id"), query.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
