package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/travelit/backend/pkg/response"
)

// uintParam reads a positive numeric path parameter, writing a 400 on failure.
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the request body, writing the validator message as a 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, err.Error())
		return false
	}
	return true
}
