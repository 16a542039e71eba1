package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/andresuchdata/stockcast/internal/report"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// queryInt reads an optional integer query parameter. Absent means 0.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &forecast.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *ForecastHandler) productForecast(c *gin.Context) (*domain.ProductForecast, bool) {
	horizon, err := queryInt(c, "horizon")
	if err != nil {
		writeError(c, err, "invalid query")
		return nil, false
	}

	pf, err := h.service.ForecastProduct(c.Request.Context(), c.Param("id"), c.Query("template"), horizon)
	if err != nil {
		writeError(c, err, "failed to generate forecast")
		return nil, false
	}
	return pf, true
}

// GetProductForecast handles GET /forecast/products/:id?template=&horizon=
func (h *ForecastHandler) GetProductForecast(c *gin.Context) {
	pf, ok := h.productForecast(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, pf)
}

// GetProductReport streams the forecast as an xlsx workbook, or as csv
// with format=csv.
func (h *ForecastHandler) GetProductReport(c *gin.Context) {
	pf, ok := h.productForecast(c)
	if !ok {
		return
	}

	var (
		buf         bytes.Buffer
		err         error
		contentType = report.ContentType
		ext         = "xlsx"
	)
	if strings.EqualFold(c.Query("format"), "csv") {
		contentType, ext = "text/csv", "csv"
		err = report.WriteForecastCSV(&buf, pf.Result.Forecast)
	} else {
		err = report.WriteWorkbook(&buf, pf)
	}
	if err != nil {
		writeError(c, err, "failed to render report")
		return
	}

	filename := fmt.Sprintf("forecast-%s-%s.%s", pf.Product.ID, pf.GeneratedAt.Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Simulate handles POST /forecast/simulate
func (h *ForecastHandler) Simulate(c *gin.Context) {
	var req domain.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	result, err := h.service.Simulate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "failed to simulate forecast")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOverview handles GET /forecast/overview?product_ids=a,b&days=30&priority=critical,high
func (h *ForecastHandler) GetOverview(c *gin.Context) {
	days, err := queryInt(c, "days")
	if err != nil {
		writeError(c, err, "invalid query")
		return
	}
	if days == 0 {
		days = 30
	}

	overview, err := h.service.DemandOverview(c.Request.Context(), splitList(c.Query("product_ids")), days)
	if err != nil {
		writeError(c, err, "failed to build demand overview")
		return
	}

	if priorities := domain.ParsePriorities(c.Query("priority")); len(priorities) > 0 {
		filtered := *overview
		filtered.Items = domain.FilterOverview(overview.Items, priorities)
		filtered.Summary = domain.Summarize(filtered.Items)
		overview = &filtered
	}

	if strings.EqualFold(c.Query("format"), "xlsx") {
		var buf bytes.Buffer
		if err := report.WriteOverviewWorkbook(&buf, overview); err != nil {
			writeError(c, err, "failed to render report")
			return
		}
		filename := fmt.Sprintf("demand-overview-%s.xlsx", overview.GeneratedAt.Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, report.ContentType, buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetRuns lists recent overview batch runs.
func (h *ForecastHandler) GetRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}

	runs, err := h.service.Runs(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err, "failed to fetch runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
