package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pnlapp "github.com/sewline/backend/internal/application/pnl"
)

// PnLHandler handles order and period P&L API endpoints
type PnLHandler struct {
	BaseHandler
	orderPnL  *pnlapp.OrderPnLService
	periodPnL *pnlapp.PeriodPnLService
}

// NewPnLHandler creates a new PnLHandler
func NewPnLHandler(orderPnL *pnlapp.OrderPnLService, periodPnL *pnlapp.PeriodPnLService) *PnLHandler {
	return &PnLHandler{
		orderPnL:  orderPnL,
		periodPnL: periodPnL,
	}
}

// reportDateLayout is the date format of the period report query parameters
const reportDateLayout = "2006-01-02"

// OrderPnLResponse represents an order P&L in API responses. Amounts are
// in the company base currency; the actual_* fields are present only when
// at least one invoice has been issued against the order.
// @Description Order P&L response
type OrderPnLResponse struct {
	OrderID             string   `json:"order_id" example:"550e8400-e29b-41d4-a716-446655440010"`
	OrderNumber         string   `json:"order_number" example:"SO-2026-00042"`
	CustomerName        string   `json:"customer_name" example:"Nordwear AB"`
	Currency            string   `json:"currency" example:"USD"`
	ShippingTerms       string   `json:"shipping_terms" example:"FOB"`
	IsActual            bool     `json:"is_actual" example:"false"`
	EstimatedRevenue    float64  `json:"estimated_revenue" example:"125000.00"`
	ActualRevenue       *float64 `json:"actual_revenue,omitempty" example:"123500.00"`
	OrderCostTotal      float64  `json:"order_cost_total" example:"61200.00"`
	ProductionCostTotal float64  `json:"production_cost_total" example:"28400.00"`
	VATRefundTotal      float64  `json:"vat_refund_total" example:"5230.00"`
	NetCosts            float64  `json:"net_costs" example:"89600.00"`
	EstimatedProfit     float64  `json:"estimated_profit" example:"35400.00"`
	ActualProfit        *float64 `json:"actual_profit,omitempty" example:"33900.00"`
	EstimatedMargin     float64  `json:"estimated_margin" example:"0.2832"`
	ActualMargin        *float64 `json:"actual_margin,omitempty" example:"0.2745"`
	RevenueVariance     *float64 `json:"revenue_variance,omitempty" example:"-1500.00"`
}

// ColorPnLResponse represents one color row of the order P&L drill-down
// @Description Per-color P&L row
type ColorPnLResponse struct {
	Color    string  `json:"color" example:"NAVY"`
	Quantity float64 `json:"quantity" example:"1200"`
	Revenue  float64 `json:"revenue" example:"48000.00"`
	Costs    float64 `json:"costs" example:"31000.00"`
	Profit   float64 `json:"profit" example:"17000.00"`
	Margin   float64 `json:"margin" example:"0.3541"`
}

// OrderPnLByColorResponse represents the color-level order P&L
// @Description Order P&L drill-down by color
type OrderPnLByColorResponse struct {
	OrderID     string             `json:"order_id" example:"550e8400-e29b-41d4-a716-446655440010"`
	OrderNumber string             `json:"order_number" example:"SO-2026-00042"`
	Colors      []ColorPnLResponse `json:"colors"`
}

// PnLTotalsResponse represents one aggregated P&L row
// @Description Aggregated P&L totals
type PnLTotalsResponse struct {
	EstimatedRevenue float64 `json:"estimated_revenue" example:"410000.00"`
	ActualRevenue    float64 `json:"actual_revenue" example:"268000.00"`
	Costs            float64 `json:"total_costs" example:"287000.00"`
	VATRefund        float64 `json:"vat_refund" example:"16400.00"`
	EstimatedProfit  float64 `json:"estimated_profit" example:"123000.00"`
	ActualProfit     float64 `json:"actual_profit" example:"81000.00"`
	EstimatedMargin  float64 `json:"estimated_margin" example:"30"`
	ActualMargin     float64 `json:"actual_margin" example:"28.5"`
	OrderCount       int     `json:"order_count" example:"7"`
	ActualCount      int     `json:"actual_count" example:"4"`
}

// PeriodBucketResponse represents one reporting period with its orders
// @Description Reporting period bucket
type PeriodBucketResponse struct {
	PeriodKey string             `json:"period_key" example:"2026-03"`
	Label     string             `json:"label" example:"2026-03"`
	Orders    []OrderPnLResponse `json:"orders"`
	Totals    PnLTotalsResponse  `json:"totals"`
}

// PeriodPnLReportResponse represents the period roll-up report
// @Description Period P&L report response
type PeriodPnLReportResponse struct {
	Granularity string                 `json:"granularity" example:"MONTHLY"`
	Start       string                 `json:"start" example:"2026-01-01"`
	End         string                 `json:"end" example:"2026-07-01"`
	Periods     []PeriodBucketResponse `json:"periods"`
	Totals      PnLTotalsResponse      `json:"totals"`
}

// PeriodReportRequest represents the period report query parameters
// @Description Query parameters for the period P&L report
type PeriodReportRequest struct {
	Start       string `form:"start" binding:"required" example:"2026-01-01"`
	End         string `form:"end" binding:"required" example:"2026-07-01"`
	Granularity string `form:"granularity" binding:"required,granularity" example:"MONTHLY"`
}

// GetOrderPnL godoc
// @ID           getOrderPnL
// @Summary      Get the P&L of a customer order
// @Description  Aggregate the order's revenue, cost ledger and production invoices into a P&L view; pass by=color for the per-color drill-down
// @Tags         orders
// @Produce      json
// @Param        id path string true "Customer Order ID" format(uuid)
// @Param        by query string false "Drill-down dimension" Enums(color)
// @Success      200 {object} APIResponse[OrderPnLResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /orders/{id}/pnl [get]
func (h *PnLHandler) GetOrderPnL(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	switch c.Query("by") {
	case "":
		pnl, err := h.orderPnL.GetOrderPnL(c.Request.Context(), orderID)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, toOrderPnLResponse(pnl))
	case "color":
		pnl, err := h.orderPnL.GetOrderPnLByColor(c.Request.Context(), orderID)
		if err != nil {
			h.HandleDomainError(c, err)
			return
		}
		h.Success(c, toOrderPnLByColorResponse(pnl))
	default:
		h.BadRequest(c, "Unsupported drill-down dimension, expected by=color")
	}
}

// GetPeriodReport godoc
// @ID           getPeriodPnLReport
// @Summary      Get the period P&L report
// @Description  Roll order P&Ls up into monthly, quarterly or annual periods over [start, end); each order lands in the period of its anchor date
// @Tags         reports
// @Produce      json
// @Param        start query string true "Range start (inclusive)" format(date) example(2026-01-01)
// @Param        end query string true "Range end (exclusive)" format(date) example(2026-07-01)
// @Param        granularity query string true "Reporting granularity" Enums(MONTHLY, QUARTERLY, ANNUAL)
// @Success      200 {object} APIResponse[PeriodPnLReportResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /reports/pnl [get]
func (h *PnLHandler) GetPeriodReport(c *gin.Context) {
	var req PeriodReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	start, err := time.Parse(reportDateLayout, req.Start)
	if err != nil {
		h.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(reportDateLayout, req.End)
	if err != nil {
		h.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
		return
	}
	if !end.After(start) {
		h.BadRequest(c, "End date must be after start date")
		return
	}

	granularity, err := pnlapp.ParseGranularity(req.Granularity)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.periodPnL.GetPeriodPnL(c.Request.Context(), start, end, granularity)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toPeriodPnLReportResponse(report))
}

// toOrderPnLResponse converts the application P&L to the handler response
func toOrderPnLResponse(pnl *pnlapp.OrderPnL) OrderPnLResponse {
	resp := OrderPnLResponse{
		OrderID:             pnl.OrderID.String(),
		OrderNumber:         pnl.OrderNumber,
		CustomerName:        pnl.CustomerName,
		Currency:            string(pnl.Currency),
		ShippingTerms:       string(pnl.ShippingTerms),
		IsActual:            pnl.IsActual,
		EstimatedRevenue:    pnl.EstimatedRevenue.InexactFloat64(),
		OrderCostTotal:      pnl.OrderCostTotal.InexactFloat64(),
		ProductionCostTotal: pnl.ProductionCostTotal.InexactFloat64(),
		VATRefundTotal:      pnl.VATRefundTotal.InexactFloat64(),
		NetCosts:            pnl.NetCosts.InexactFloat64(),
		EstimatedProfit:     pnl.EstimatedProfit.InexactFloat64(),
		EstimatedMargin:     pnl.EstimatedMargin.InexactFloat64(),
	}

	if pnl.ActualRevenue != nil {
		v := pnl.ActualRevenue.InexactFloat64()
		resp.ActualRevenue = &v
	}
	if pnl.ActualProfit != nil {
		v := pnl.ActualProfit.InexactFloat64()
		resp.ActualProfit = &v
	}
	if pnl.ActualMargin != nil {
		v := pnl.ActualMargin.InexactFloat64()
		resp.ActualMargin = &v
	}
	if pnl.RevenueVariance != nil {
		v := pnl.RevenueVariance.InexactFloat64()
		resp.RevenueVariance = &v
	}

	return resp
}

// toOrderPnLByColorResponse converts the color drill-down to the handler response
func toOrderPnLByColorResponse(pnl *pnlapp.OrderPnLByColor) OrderPnLByColorResponse {
	colors := make([]ColorPnLResponse, len(pnl.Colors))
	for i, row := range pnl.Colors {
		colors[i] = ColorPnLResponse{
			Color:    row.Color,
			Quantity: row.Quantity.InexactFloat64(),
			Revenue:  row.Revenue.InexactFloat64(),
			Costs:    row.Costs.InexactFloat64(),
			Profit:   row.Profit.InexactFloat64(),
			Margin:   row.Margin.InexactFloat64(),
		}
	}

	return OrderPnLByColorResponse{
		OrderID:     pnl.OrderID.String(),
		OrderNumber: pnl.OrderNumber,
		Colors:      colors,
	}
}

// toPnLTotalsResponse converts totals to the handler response
func toPnLTotalsResponse(totals pnlapp.PnLTotals) PnLTotalsResponse {
	return PnLTotalsResponse{
		EstimatedRevenue: totals.EstimatedRevenue.InexactFloat64(),
		ActualRevenue:    totals.ActualRevenue.InexactFloat64(),
		Costs:            totals.Costs.InexactFloat64(),
		VATRefund:        totals.VATRefund.InexactFloat64(),
		EstimatedProfit:  totals.EstimatedProfit.InexactFloat64(),
		ActualProfit:     totals.ActualProfit.InexactFloat64(),
		EstimatedMargin:  totals.EstimatedMargin.InexactFloat64(),
		ActualMargin:     totals.ActualMargin.InexactFloat64(),
		OrderCount:       totals.OrderCount,
		ActualCount:      totals.ActualCount,
	}
}

// toPeriodPnLReportResponse converts the period report to the handler response
func toPeriodPnLReportResponse(report *pnlapp.PeriodPnLReport) PeriodPnLReportResponse {
	periods := make([]PeriodBucketResponse, len(report.Periods))
	for i, bucket := range report.Periods {
		orders := make([]OrderPnLResponse, len(bucket.Orders))
		for j := range bucket.Orders {
			orders[j] = toOrderPnLResponse(&bucket.Orders[j])
		}
		periods[i] = PeriodBucketResponse{
			PeriodKey: bucket.PeriodKey,
			Label:     bucket.Label,
			Orders:    orders,
			Totals:    toPnLTotalsResponse(bucket.Totals),
		}
	}

	return PeriodPnLReportResponse{
		Granularity: string(report.Granularity),
		Start:       report.Start,
		End:         report.End,
		Periods:     periods,
		Totals:      toPnLTotalsResponse(report.Totals),
	}
}
