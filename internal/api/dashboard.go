package api

import (
	"net/http"
	"strconv"

	"console-gateway/internal/backend"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	Client *backend.Client
}

func NewDashboardHandler(client *backend.Client) *DashboardHandler {
	return &DashboardHandler{Client: client}
}

func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	metrics, err := h.Client.GetMetrics()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", metrics)
}

func (h *DashboardHandler) GetNpsStats(c *gin.Context) {
	stats, err := h.Client.GetNpsStats(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", stats)
}

func (h *DashboardHandler) GetNpsFeedbacks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	feedbacks, err := h.Client.GetNpsFeedbacks(c.Query("category"), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", feedbacks)
}

func (h *DashboardHandler) TriggerNpsSurvey(c *gin.Context) {
	if err := h.Client.TriggerNpsSurvey(c.Param("userId")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Survey triggered"})
}

func (h *DashboardHandler) GetUserNpsResponses(c *gin.Context) {
	responses, err := h.Client.GetUserNpsResponses(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", responses)
}

// HealthCheck reports gateway liveness and whether the backend is
// reachable.
func (h *DashboardHandler) HealthCheck(c *gin.Context) {
	backendStatus := "ok"
	if _, err := h.Client.Health(); err != nil {
		backendStatus = "unreachable"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": backendStatus})
}
