package middleware

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// RequestLogger logs method, path, status and duration for every request.
func RequestLogger(log zerolog.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			log.Info().
				Str("method", string(ctx.Method())).
				Str("path", string(ctx.Path())).
				Int("status", ctx.Response.StatusCode()).
				Dur("duration", time.Since(start)).
				Str("ip", ctx.RemoteAddr().String()).
				Msg("request")
		}
	}
}
