package handler

import (
	"strconv"

	"github.com/diogoammendes/SideSales/internal/models"

	"github.com/gin-gonic/gin"
)

// currentUser returns the authenticated user set by the auth middleware.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pagination reads ?page= and ?page_size= with sane bounds.
func pagination(c *gin.Context, defaultSize int) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if size < 1 || size > 200 {
		size = defaultSize
	}
	return page, size
}

const money = 2 // decimal places on every amount we serialize
