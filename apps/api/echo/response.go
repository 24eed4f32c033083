package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// envelope is the shape of every API response.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Error   string            `json:"error,omitempty"` // debug only
}

func ok(ctx echo.Context, data interface{}, message ...string) error {
	resp := envelope{Success: true, Data: data}
	if len(message) > 0 {
		resp.Message = message[0]
	}
	return ctx.JSON(http.StatusOK, resp)
}
