// Package response holds the JSON envelope shared by every endpoint.
// Success bodies are flat objects with ok=true; error bodies carry a
// stable business error code.
package response

import "github.com/labstack/echo/v4"

// OK writes a success body. Fields are merged into the envelope so the
// payload stays flat, e.g. {"ok":true,"idToken":"..."}.
func OK(c echo.Context, statusCode int, fields echo.Map) error {
	body := echo.Map{"ok": true}
	for key, value := range fields {
		body[key] = value
	}

	return c.JSON(statusCode, body)
}

// Fail writes an error body: {"ok":false,"error":<code>,"message":...}.
func Fail(c echo.Context, statusCode int, errorCode, message string, details string) error {
	body := echo.Map{
		"ok":    false,
		"error": errorCode,
	}
	if message != "" {
		body["message"] = message
	}
	if details != "" {
		body["details"] = details
	}

	return c.JSON(statusCode, body)
}
