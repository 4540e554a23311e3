package middleware

import (
	"net/http"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thanhnp/ord-store/internal/metrics"
	"github.com/thanhnp/ord-store/internal/storage"
)

// Logger logs request information and records request metrics
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Filter out HTTP/2 connection preface attempts
		if c.Request.Method == "PRI" {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), status, start)

		if query != "" {
			path = path + "?" + query
		}

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Recovery recovers from panics and returns a 500 error
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", zap.Any("panic", err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// CORS adds CORS headers
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// validTxHash reports whether s is a full hex-encoded 32-byte hash
func validTxHash(s string) bool {
	if len(s) != chainhash.MaxHashStringSize {
		return false
	}
	_, err := chainhash.NewHashFromStr(s)
	return err == nil
}

// ValidateTxHash validates a transaction hash path parameter
func ValidateTxHash(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validTxHash(c.Param(param)) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Invalid transaction hash",
			})
			return
		}
		c.Next()
	}
}

// ValidateOutputHash validates a <txHash>:<index> path parameter
func ValidateOutputHash(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		txHash, _, err := storage.ParseOutputHash(c.Param(param))
		if err != nil || !validTxHash(txHash) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Invalid output hash",
			})
			return
		}
		c.Next()
	}
}
