package response

import "github.com/gin-gonic/gin"

// WarningMarker prefixes every answer that reports a failure instead of a
// generated reply.
const WarningMarker = "⚠️ "

type AnswerResponse struct {
	Answer string `json:"answer"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func Answer(c *gin.Context, text string) {
	c.JSON(200, AnswerResponse{Answer: text})
}

func Warning(c *gin.Context, message string) {
	Answer(c, WarningMarker+message)
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, ErrorResponse{Error: message})
}
