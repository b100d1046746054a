package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"

	"github.com/finguard/treasury-api/internal/domain/entity"
	"github.com/finguard/treasury-api/internal/domain/repository"
	"github.com/finguard/treasury-api/internal/presentation/http/dto/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// DefaultIdempotencyTTL is how long cached responses are valid
	DefaultIdempotencyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyRequired enforces exactly-once semantics on a marked operation.
//
// The key is reserved with an atomic insert before the handler runs, so two
// concurrent first-time requests with the same key cannot both execute: the
// loser of the reserve race sees the winner's reservation. Only successful
// (2xx) responses are cached; a failed request releases its reservation so a
// retry is free to re-execute.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	ttl := config.TTL
	if ttl == 0 {
		ttl = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			response.BadRequest(c, "Idempotency-Key header is required for this request")
			c.Abort()
			return
		}

		userIDValue, exists := c.Get("user_id")
		if !exists {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}
		userID, ok := userIDValue.(uuid.UUID)
		if !ok {
			response.Unauthorized(c, "Invalid user ID")
			c.Abort()
			return
		}

		fingerprint, err := requestFingerprint(c)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		record := &entity.IdempotencyRecord{
			Key:                key,
			UserID:             userID,
			Endpoint:           c.Request.Method + " " + c.FullPath(),
			RequestFingerprint: fingerprint,
			ExpiresAt:          time.Now().Add(ttl),
		}

		reserved, err := config.Repo.Reserve(c.Request.Context(), record)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if !reserved {
			existing, err := config.Repo.GetByKey(c.Request.Context(), key)
			if err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			if existing == nil || existing.IsExpired() {
				// The winning request's record expired or was swept between
				// our reserve and this read; tell the client to retry.
				response.ErrorWithCode(c, 409, "idempotency key state changed, retry the request")
				c.Abort()
				return
			}
			if existing.RequestFingerprint != fingerprint {
				response.ErrorWithCode(c, 409, "idempotency key reused with a different request")
				c.Abort()
				return
			}
			if !existing.IsCompleted() {
				response.ErrorWithCode(c, 409, "a request with this idempotency key is still in progress")
				c.Abort()
				return
			}

			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		// Capture the response
		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			_ = config.Repo.Complete(c.Request.Context(), key, status, blw.body.String())
		} else {
			// Failures are not idempotent-cached: drop the reservation so a
			// retried request re-executes instead of replaying a stale error.
			_ = config.Repo.Release(c.Request.Context(), key)
		}
	}
}

// requestFingerprint hashes (method, target, body) so key reuse with a
// different logical request is detectable.
func requestFingerprint(c *gin.Context) (string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte("|"))
	h.Write([]byte(c.Request.URL.Path))
	h.Write([]byte("|"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}
