package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/food_cart/internal/domain"
	"github.com/fjod/food_cart/internal/identity"
	"github.com/fjod/food_cart/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	UserIDHeader    = "X-User-ID"
	RequestIDHeader = "X-Request-ID"
	GuestCookieName = "guest_token"

	guestCookieMaxAge = 30 * 24 * time.Hour
)

type ctxKey int

const (
	callerKey ctxKey = iota
	requestIDKey
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request once the handler has answered.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithTrace(r.Context(), log).Info("request served",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", getRequestID(r.Context())),
			)
		})
	}
}

// IdentityMiddleware resolves the caller before any handler runs. A request
// carrying X-User-ID is a signed-in user and must exist in the directory.
// Anyone else is a guest identified by the guest_token cookie, which is
// issued (or reissued when malformed) on the way through.
func IdentityMiddleware(dir identity.Directory, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var caller identity.Caller

			if userID := r.Header.Get(UserIDHeader); userID != "" {
				user, err := dir.Lookup(r.Context(), userID)
				if errors.Is(err, identity.ErrUserNotFound) {
					respondError(w, http.StatusUnauthorized, string(domain.CodeAuthRequired), "unknown user")
					return
				}
				if err != nil {
					log.Error("user lookup failed", zap.String("user_id", userID), zap.Error(err))
					respondError(w, http.StatusInternalServerError, codeInternal, "internal server error")
					return
				}
				caller = identity.Caller{OwnerKey: identity.UserOwnerKey(user.ID), User: user}
			} else {
				token := ""
				if c, err := r.Cookie(GuestCookieName); err == nil {
					token = c.Value
				}
				if !identity.ValidGuestToken(token) {
					token = identity.NewGuestToken()
					http.SetCookie(w, &http.Cookie{
						Name:     GuestCookieName,
						Value:    token,
						Path:     "/",
						MaxAge:   int(guestCookieMaxAge.Seconds()),
						HttpOnly: true,
						SameSite: http.SameSiteLaxMode,
					})
				}
				caller = identity.Caller{OwnerKey: identity.GuestOwnerKey(token)}
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getCaller(ctx context.Context) (identity.Caller, bool) {
	caller, ok := ctx.Value(callerKey).(identity.Caller)
	return caller, ok && caller.OwnerKey != ""
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}
