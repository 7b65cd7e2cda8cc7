package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/canteen-central/canteen-api/internal/middleware"
	"github.com/canteen-central/canteen-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// periodParams parses the :schoolId/:year/:month path segments.
func periodParams(c *gin.Context) (schoolID int64, year, month int, err error) {
	schoolID, err = strconv.ParseInt(c.Param("schoolId"), 10, 64)
	if err != nil {
		return 0, 0, 0, err
	}
	year, err = strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, 0, 0, err
	}
	month, err = strconv.Atoi(c.Param("month"))
	if err != nil {
		return 0, 0, 0, err
	}
	return schoolID, year, month, nil
}
