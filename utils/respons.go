package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Meta struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

type JSONResponse struct {
	StatusCode int         `json:"statusCode"`
	Meta       Meta        `json:"meta"`
	Body       interface{} `json:"body"`
}

func newMeta(c *gin.Context, success bool, message string) Meta {
	return Meta{
		Success:   success,
		Message:   message,
		Path:      c.Request.URL.RequestURI(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		StatusCode: code,
		Meta:       newMeta(c, code >= 200 && code < 300, message),
		Body:       data,
	})
}

// RespondError memetakan error ke status HTTP. Error internal tidak dibocorkan ke client.
func RespondError(c *gin.Context, err error) {
	appErr := AsAppError(err)
	code := appErr.StatusCode()
	if code == http.StatusInternalServerError && ErrorLogger != nil {
		ErrorLogger.WithField("request_id", c.GetString("request_id")).
			Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(code, JSONResponse{
		StatusCode: code,
		Meta:       newMeta(c, false, appErr.Error()),
		Body:       nil,
	})
}
