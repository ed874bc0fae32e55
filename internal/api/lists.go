package api

import (
	"errors"
	"net/http"
	"strconv"

	"console-gateway/internal/distribution"

	"github.com/gin-gonic/gin"
)

type ListHandler struct {
	Repo distribution.Repository
}

func NewListHandler(repo distribution.Repository) *ListHandler {
	return &ListHandler{Repo: repo}
}

func (h *ListHandler) listID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list ID"})
		return 0, false
	}
	return uint(id), true
}

func (h *ListHandler) GetLists(c *gin.Context) {
	lists, err := h.Repo.All()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lists)
}

func (h *ListHandler) GetList(c *gin.Context) {
	id, ok := h.listID(c)
	if !ok {
		return
	}
	list, err := h.Repo.Get(id)
	if err != nil {
		h.writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type CreateListRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *ListHandler) CreateList(c *gin.Context) {
	var req CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := h.Repo.Create(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (h *ListHandler) DeleteList(c *gin.Context) {
	id, ok := h.listID(c)
	if !ok {
		return
	}
	if err := h.Repo.Delete(id); err != nil {
		h.writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "List deleted"})
}

type NumberRequest struct {
	Number string `json:"number" binding:"required"`
}

func (h *ListHandler) AddNumber(c *gin.Context) {
	id, ok := h.listID(c)
	if !ok {
		return
	}
	var req NumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	list, err := h.Repo.AddNumber(id, req.Number)
	if err != nil {
		h.writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ListHandler) RemoveNumber(c *gin.Context) {
	id, ok := h.listID(c)
	if !ok {
		return
	}
	list, err := h.Repo.RemoveNumber(id, c.Param("number"))
	if err != nil {
		h.writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ImportNumbers bulk-adds numbers from an uploaded CSV, one number per
// line. Invalid lines are skipped rather than failing the import.
func (h *ListHandler) ImportNumbers(c *gin.Context) {
	id, ok := h.listID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	numbers, err := distribution.ParseNumbers(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(numbers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid numbers in file"})
		return
	}

	list, err := h.Repo.AddNumbers(id, numbers)
	if err != nil {
		h.writeRepoError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(numbers), "list": list})
}

func (h *ListHandler) writeRepoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, distribution.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, distribution.ErrDuplicateNumber):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
