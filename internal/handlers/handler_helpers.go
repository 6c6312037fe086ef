package handlers

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// actorID identifies the caller for audit fields. Authentication is handled
// upstream; the gateway forwards the user in this header.
func actorID(c *gin.Context) string {
	if id := c.GetHeader("X-Actor-ID"); id != "" {
		return id
	}
	return "system"
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter, returning the
// fallback when absent.
func parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s, expected YYYY-MM-DD", name)
	}
	return d, nil
}
