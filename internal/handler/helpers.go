package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sims-api/internal/models"
)

// Query keys consumed by the list contract itself; everything else becomes an
// exact-match filter and is silently dropped when the kind doesn't allow it.
var reservedQueryKeys = map[string]bool{
	"search":    true,
	"order_by":  true,
	"order_dir": true,
	"limit":     true,
	"offset":    true,
}

func bindListQuery(c *gin.Context) models.ListQuery {
	query := models.ListQuery{
		Search:   c.Query("search"),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
		Filters:  map[string]string{},
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			query.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			query.Offset = offset
		}
	}
	for key, values := range c.Request.URL.Query() {
		if reservedQueryKeys[key] || len(values) == 0 {
			continue
		}
		query.Filters[key] = values[0]
	}
	query.Normalize()
	return query
}
