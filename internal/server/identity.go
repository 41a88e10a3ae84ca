package server

import (
	"context"
	"net/http"
)

type contextKey int

const (
	athleteIDKey contextKey = iota
	athleteInfoKey
)

// AthleteInfo is the identity attached to a request.
type AthleteInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// DevIdentity sets athlete_id=1 for all requests, enabling local
// development without Tailscale identity headers.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), athleteIDKey, 1)
		ctx = context.WithValue(ctx, athleteInfoKey, AthleteInfo{Login: "local", DisplayName: "Local Dev Athlete"})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// athleteIDFromContext returns the athlete ID set by identity middleware,
// defaulting to 1.
func athleteIDFromContext(r *http.Request) int {
	if id, ok := r.Context().Value(athleteIDKey).(int); ok {
		return id
	}
	return 1
}

// athleteInfoFromContext returns the identity set by identity middleware.
func athleteInfoFromContext(r *http.Request) AthleteInfo {
	if info, ok := r.Context().Value(athleteInfoKey).(AthleteInfo); ok {
		return info
	}
	return AthleteInfo{Login: "local", DisplayName: "Local Dev Athlete"}
}
