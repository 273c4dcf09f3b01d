package ratelimit

import (
	"context"
	"net/http"
	"time"

	"support-lookup/pkg/logger"
	"support-lookup/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "support-lookup:inflight:"

// Options bound the number of in-flight requests per client IP.
type Options struct {
	MaxInFlight int
	// TTL caps how long a slot can outlive a crashed process.
	TTL time.Duration
}

// LimitInFlight rejects requests with 429 once a client holds MaxInFlight
// concurrent slots. Slots are shared across replicas through Redis.
//
// Redis failures fail open: the request is served and the error logged.
func LimitInFlight(rdb redis.Scripter, opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromGin(c)
		key := keyPrefix + c.ClientIP()

		ok, err := utils.AcquireConcurrencyCap(c.Request.Context(), rdb, key, opts.MaxInFlight, opts.TTL)
		if err != nil {
			log.Warn("inflight acquire failed", "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"erro": "Muitas requisições simultâneas."})
			return
		}

		defer func() {
			// release even if the client went away
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
			defer cancel()
			if err := utils.ReleaseConcurrencyCap(releaseCtx, rdb, key); err != nil {
				log.Warn("inflight release failed", "err", err)
			}
		}()

		c.Next()
	}
}
