// Package request carries per-request identity between middleware and handlers.
package request

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ActorHeader is set by the auth gateway in front of the server.
const ActorHeader = "X-Actor-ID"

type (
	actorKey     struct{}
	requestIDKey struct{}
)

// ParseActorID parses a positive int64 user ID.
func ParseActorID(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	actorID, err := strconv.ParseInt(value, 10, 64)
	if err != nil || actorID <= 0 {
		return 0, false
	}

	return actorID, true
}

// ActorIDFromHeader reads the acting user from the X-Actor-ID header.
func ActorIDFromHeader(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(ActorHeader))
	if raw == "" {
		return 0, false
	}

	actorID, ok := ParseActorID(raw)
	if !ok {
		log.Ctx(r.Context()).
			Debug().
			Str("actor_header", raw).
			Msg("Ignoring malformed actor header")
	}
	return actorID, ok
}

func ContextWithActor(ctx context.Context, actorID int64) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the acting user, or 0 for anonymous requests.
func ActorFromContext(ctx context.Context) int64 {
	actorID, _ := ctx.Value(actorKey{}).(int64)
	return actorID
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}
