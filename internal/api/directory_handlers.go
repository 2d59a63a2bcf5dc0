package api

import (
	"math"
	"net/http"

	"github.com/JustJay7/fir-manager/internal/access"
	"github.com/JustJay7/fir-manager/internal/directory"
	"github.com/gin-gonic/gin"
)

// directoryHandlers serves admin CRUD for one directory resource. Writes
// drop the cached dashboards, which count stations and officers.
type directoryHandlers[T any] struct {
	h    *Handlers
	repo *directory.Repo[T]
}

func (d directoryHandlers[T]) list(c *gin.Context) {
	records, err := d.repo.List(c.Request.Context(), access.For(currentUser(c)))
	if err != nil {
		d.h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    records,
	})
}

func (d directoryHandlers[T]) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	record, err := d.repo.Get(c.Request.Context(), access.For(currentUser(c)), id)
	if err != nil {
		d.h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

func (d directoryHandlers[T]) create(c *gin.Context) {
	var record T
	if err := c.ShouldBindJSON(&record); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := d.repo.Create(c.Request.Context(), access.For(currentUser(c)), &record); err != nil {
		d.h.fail(c, err)
		return
	}
	d.h.firs.InvalidateDashboards()

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}

func (d directoryHandlers[T]) update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var changes map[string]interface{}
	if err := c.ShouldBindJSON(&changes); err != nil {
		badRequest(c, err.Error())
		return
	}

	record, err := d.repo.Update(c.Request.Context(), access.For(currentUser(c)), id, wholeNumbers(changes))
	if err != nil {
		d.h.fail(c, err)
		return
	}
	d.h.firs.InvalidateDashboards()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

func (d directoryHandlers[T]) remove(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := d.repo.Delete(c.Request.Context(), access.For(currentUser(c)), id); err != nil {
		d.h.fail(c, err)
		return
	}
	d.h.firs.InvalidateDashboards()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": d.repo.Name() + " deleted",
	})
}

// wholeNumbers turns integral JSON numbers back into integers so ID
// columns are written as integers
func wholeNumbers(m map[string]interface{}) map[string]interface{} {
	for k, v := range m {
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			m[k] = int64(f)
		}
	}
	return m
}

func registerDirectory[T any](rg *gin.RouterGroup, path string, h *Handlers, repo *directory.Repo[T]) {
	d := directoryHandlers[T]{h: h, repo: repo}
	rg.GET(path, d.list)
	rg.POST(path, d.create)
	rg.GET(path+"/:id", d.get)
	rg.PUT(path+"/:id", d.update)
	rg.DELETE(path+"/:id", d.remove)
}
