package testutil

import (
	"context"
	"net/http"

	id "campusconnect/pkg/domain"
	"campusconnect/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the userID is not a valid UUID, it will not be added to the context.
func WithUserID(req *http.Request, userID string) *http.Request {
	if parsedUserID, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsedUserID))
	}
	return req
}

// WithAuth adds the user ID and registration number to the request context.
// This is the typical state for an authenticated request.
// An invalid user ID is silently ignored.
func WithAuth(req *http.Request, userID, regNo string) *http.Request {
	ctx := req.Context()
	if parsedUserID, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, parsedUserID)
	}
	if regNo != "" {
		ctx = requestcontext.WithRegNo(ctx, regNo)
	}
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
