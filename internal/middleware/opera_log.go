package middleware

import (
	"bytes"
	"io"
	"time"

	"orgadmin_go/internal/model"
	"orgadmin_go/internal/service"
	"orgadmin_go/pkg/log"
	"orgadmin_go/pkg/token"

	"github.com/gin-gonic/gin"
)

// maxLoggedBodyBytes 请求/响应体的落库截断长度，防止超大载荷撑爆日志表。
const maxLoggedBodyBytes = 2000

// BodyLogWriter 用于记录请求和响应的body
type BodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w *BodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// OperaLogMiddleware 记录每个请求的操作日志：
// 1. 请求结束后输出一条结构化访问日志。
// 2. 异步落库（含可选的 ES 双写），不占用请求耗时。
func OperaLogMiddleware(operaLogService service.OperaLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// 读取并重新缓存请求体，后续处理函数才能正常读取
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

		// 使用自定义的 ResponseWriter 捕获响应
		blw := &BodyLogWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = blw

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		path := c.Request.URL.Path

		// 认证中间件跑在前面时能拿到用户名，匿名接口记空
		username := ""
		if claimsVal, ok := c.Get("claims"); ok {
			if claims, ok := claimsVal.(*token.CustomClaims); ok {
				username = claims.Username
			}
		}

		log.Infow("HTTP request",
			"latency", latency,
			"status", statusCode,
			"client_ip", clientIP,
			"method", method,
			"path", path,
			"username", username,
		)

		if operaLogService == nil {
			return
		}

		entry := &model.OperaLog{
			Username:     username,
			Method:       method,
			Path:         path,
			StatusCode:   statusCode,
			LatencyMs:    latency.Milliseconds(),
			ClientIP:     clientIP,
			UserAgent:    c.Request.UserAgent(),
			RequestBody:  truncateBody(requestBody),
			ResponseBody: truncateBody(blw.body.Bytes()),
		}
		go operaLogService.Record(entry)
	}
}

func truncateBody(body []byte) string {
	if len(body) > maxLoggedBodyBytes {
		return string(body[:maxLoggedBodyBytes])
	}
	return string(body)
}
