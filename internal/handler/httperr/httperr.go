package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the public error envelope. Status drives the HTTP status
// line but is never serialized into the body.
type Response struct {
	Status int       `json:"-"`
	Error  ErrorBody `json:"error"`
	Detail any       `json:"detail,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
}

func New(status int, msg string) Response {
	return Response{
		Status: status,
		Error:  ErrorBody{Message: msg},
	}
}

// AbortWithError records the original error on the context for the error
// middleware and logging, then writes the public envelope.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := New(status, msg)
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
