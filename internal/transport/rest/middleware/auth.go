package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"pinot/internal/service"
)

type contextKey string

const (
	HostIDKey        contextKey = "hostId"
	ParticipantIDKey contextKey = "participantId"
	EventIDKey       contextKey = "eventId"
	AdminUserKey     contextKey = "adminUser"
)

// AdminSessionHeader carries the admin panel session id
const AdminSessionHeader = "X-Admin-Session"

// AuthMiddleware provides JWT and admin session middleware
type AuthMiddleware struct {
	authSvc  *service.AuthService
	eventSvc *service.EventService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService, eventSvc *service.EventService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc, eventSvc: eventSvc}
}

// RequireHost validates host JWT from Authorization header
func (m *AuthMiddleware) RequireHost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateHostToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), HostIDKey, claims.HostID)
		ctx = service.WithActor(ctx, claims.HostID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireEventOwner lets the request through only if the host owns the
// {eventId} in the path. Must run after RequireHost.
func (m *AuthMiddleware) RequireEventOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID := mux.Vars(r)["eventId"]
		if eventID == "" {
			next.ServeHTTP(w, r)
			return
		}

		_, err := m.eventSvc.GetOwned(r.Context(), eventID, GetHostID(r.Context()))
		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, service.ErrEventNotFound):
			http.Error(w, `{"error":"event not found"}`, http.StatusNotFound)
		case errors.Is(err, service.ErrNotEventHost):
			http.Error(w, `{"error":"unauthorized: not event host"}`, http.StatusForbidden)
		default:
			http.Error(w, `{"error":"failed to load event"}`, http.StatusInternalServerError)
		}
	})
}

// RequireParticipant validates participant JWT from Authorization header or
// query param. The token must belong to the {eventId} in the path.
func (m *AuthMiddleware) RequireParticipant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			// Try query param for WebSocket
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateParticipantToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}
		if eventID := mux.Vars(r)["eventId"]; eventID != "" && eventID != claims.EventID {
			http.Error(w, `{"error":"token not valid for this event"}`, http.StatusForbidden)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, ParticipantIDKey, claims.ParticipantID)
		ctx = context.WithValue(ctx, EventIDKey, claims.EventID)
		ctx = service.WithActor(ctx, "participant:"+claims.ParticipantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin validates the admin session header
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(AdminSessionHeader)
		if id == "" {
			http.Error(w, `{"error":"missing admin session"}`, http.StatusUnauthorized)
			return
		}

		session, err := m.authSvc.ValidateAdminSession(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired admin session"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AdminUserKey, session.User)
		ctx = service.WithActor(ctx, session.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetHostID extracts host ID from context
func GetHostID(ctx context.Context) string {
	if v := ctx.Value(HostIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetParticipantID extracts participant ID from context
func GetParticipantID(ctx context.Context) string {
	if v := ctx.Value(ParticipantIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetEventID extracts the participant's event ID from context
func GetEventID(ctx context.Context) string {
	if v := ctx.Value(EventIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetAdminUser extracts the admin user from context
func GetAdminUser(ctx context.Context) string {
	if v := ctx.Value(AdminUserKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
