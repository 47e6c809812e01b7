package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	TimezoneHeader     = "X-Timezone"
	timezoneQuery      = "tz"
	ContextLocationKey = "location"
)

// Timezone resolves the zone in which "today" is evaluated for the request.
// The header wins over the query parameter; fallback is used when neither is
// present. An unknown zone name is rejected with 400.
func Timezone(fallback *time.Location) gin.HandlerFunc {
	if fallback == nil {
		fallback = time.UTC
	}

	return func(c *gin.Context) {
		name := strings.TrimSpace(c.GetHeader(TimezoneHeader))
		if name == "" {
			name = strings.TrimSpace(c.Query(timezoneQuery))
		}

		loc := fallback
		if name != "" {
			parsed, err := time.LoadLocation(name)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown time zone: " + name})
				return
			}
			loc = parsed
		}

		c.Set(ContextLocationKey, loc)
		c.Header(TimezoneHeader, loc.String())
		c.Next()
	}
}

// GetLocation returns the request zone, or UTC when the middleware did not run.
func GetLocation(c *gin.Context) *time.Location {
	if v, ok := c.Get(ContextLocationKey); ok {
		if loc, ok := v.(*time.Location); ok && loc != nil {
			return loc
		}
	}
	return time.UTC
}
