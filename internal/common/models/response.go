package models

import "github.com/labstack/echo/v4"

// Respond menulis envelope standar {status, message, data}.
func Respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"status":  status,
		"message": message,
		"data":    data,
	})
}
