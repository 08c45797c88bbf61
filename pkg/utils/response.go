package utils

import (
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func ErrorResponse(c *gin.Context, code int, message string, err error) {
	response := APIError{
		Error: message,
	}

	if err != nil {
		response.Detail = err.Error()
	}

	c.JSON(code, response)
}
