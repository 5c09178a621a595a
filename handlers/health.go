package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lumina-health-api/repository"
)

const healthTimeout = 5 * time.Second

func root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": "Lumina", "message": "Lumina Health API is running"})
}

func hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from Lumina backend!"})
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now()})
}

type dbHealth struct {
	store          repository.Store
	databaseURLSet bool
}

// report describes the database connection. It always answers 200; problems
// are described in the body.
func (h *dbHealth) report(c *gin.Context) {
	resp := gin.H{
		"backend":           "✅ Running",
		"database":          "❌ Not Available",
		"database_url":      "❌ Not Set",
		"database_name":     "❌ Not Set",
		"connection_status": "Not Connected",
		"collections":       []string{},
	}

	if _, ok := h.store.(repository.Unavailable); ok || h.store == nil {
		resp["database"] = "⚠️ Available but not initialized"
		c.JSON(http.StatusOK, resp)
		return
	}

	resp["database"] = "✅ Available"
	if h.databaseURLSet {
		resp["database_url"] = "✅ Set"
	}
	resp["database_name"] = "✅ Connected"
	if name := h.store.Name(); name != "" {
		resp["database_name"] = name
	}
	resp["connection_status"] = "Connected"

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	names, err := h.store.CollectionNames(ctx)
	if err != nil {
		resp["database"] = "⚠️ Connected but Error: " + truncate(err.Error(), 80)
		c.JSON(http.StatusOK, resp)
		return
	}
	if len(names) > 10 {
		names = names[:10]
	}
	resp["collections"] = names
	resp["database"] = "✅ Connected & Working"
	c.JSON(http.StatusOK, resp)
}
