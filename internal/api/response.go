package api

import "github.com/gin-gonic/gin"

// envelope is the response shape every endpoint uses: a success/error
// classification, a human-readable message and a payload object. Errors
// carry an empty payload rather than omitting it.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(c *gin.Context, code int, message string, data any) {
	status := "success"
	if code >= 400 {
		status = "error"
	}
	if data == nil {
		data = gin.H{}
	}
	c.JSON(code, envelope{Status: status, Message: message, Data: data})
}
