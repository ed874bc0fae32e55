package api

import (
	"net/http"
	"strconv"
	"time"

	"console-gateway/internal/backend"
	"console-gateway/internal/calendar"
	"console-gateway/internal/models"

	"github.com/gin-gonic/gin"
)

type AppointmentHandler struct {
	Client *backend.Client
}

func NewAppointmentHandler(client *backend.Client) *AppointmentHandler {
	return &AppointmentHandler{Client: client}
}

func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	appointments, err := h.Client.GetAppointments(page, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	c.JSON(http.StatusOK, appointments)
}

// GetCalendar lays a month of appointments out as complete weeks. The grid
// always starts on a Sunday and ends on a Saturday, padding with days from
// the neighbouring months.
func (h *AppointmentHandler) GetCalendar(c *gin.Context) {
	month := c.DefaultQuery("month", time.Now().Format("2006-01"))
	ref, err := time.Parse("2006-01", month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be formatted as YYYY-MM"})
		return
	}

	appointments, err := h.Client.GetAppointments(0, 500)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	var status models.AppointmentStatus
	if raw := c.Query("status"); raw != "" {
		status, err = models.ParseAppointmentStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	filtered := calendar.FilterAppointments(appointments, status, c.Query("search"))

	c.JSON(http.StatusOK, gin.H{
		"month": month,
		"weeks": calendar.MonthGrid(ref, filtered, time.Now()),
	})
}

func (h *AppointmentHandler) GetUserAppointments(c *gin.Context) {
	appointments, err := h.Client.GetUserAppointments(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *AppointmentHandler) GetAppointmentDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}
	appointment, err := h.Client.GetAppointmentDetails(id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, appointment)
}

func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req backend.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" || req.Date == "" || req.Time == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId, appointmentDate and appointmentTime are required"})
		return
	}

	appointment, err := h.Client.CreateAppointment(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}
	var req backend.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Client.UpdateAppointment(id, req); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Appointment updated"})
}

func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}
	notify := c.DefaultQuery("notify", "true") == "true"

	if err := h.Client.CancelAppointment(id, notify); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Appointment cancelled"})
}

func (h *AppointmentHandler) SendReminder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}
	if err := h.Client.SendAppointmentReminder(id); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Reminder sent"})
}

func (h *AppointmentHandler) GetSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	slots, err := h.Client.GetAppointmentSlots(date)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", slots)
}
