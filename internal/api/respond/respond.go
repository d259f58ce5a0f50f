// Package respond owns the uniform response envelope returned by every
// endpoint: {ok, message, data?, count?}. The message strings come from
// the domain message catalog and are part of the API contract.
package respond

import (
	"github.com/labstack/echo/v4"
)

// Envelope is the standard wrapper for success and error responses alike.
type Envelope struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Count   int64  `json:"count,omitempty"`
}

// Success writes a success envelope with the given payload and count.
func Success(c echo.Context, status int, data any, message string, count int64) error {
	return c.JSON(status, Envelope{OK: true, Message: message, Data: data, Count: count})
}

// Error writes an error envelope carrying only the catalog message.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{OK: false, Message: message})
}
