package middleware

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLoggerMiddleware dumps request bodies when debug mode is on.
// Decrypted plaintext never flows through requests, only armored
// material, so logging bodies is safe here.
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		tee := io.TeeReader(c.Request.Body, &buf)
		body, _ := io.ReadAll(tee)
		c.Request.Body = io.NopCloser(&buf)

		logrus.Debugf("request %s %s", c.Request.Method, c.Request.URL.Path)
		logrus.Tracef("headers: %v", c.Request.Header)
		logrus.Tracef("body: %s", string(body))

		c.Next()
	}
}
