package auth

import (
	"context"

	"travelbook/airports/internal/common"
)

type contextKey string

var adminClaimsKey contextKey = "admin_claims"
var requestIDKey contextKey = "request_id"

func SetAdminClaims(ctx context.Context, claims *common.AdminClaims) context.Context {
	return context.WithValue(ctx, adminClaimsKey, claims)
}

func GetAdminClaims(ctx context.Context) *common.AdminClaims {
	if claims, ok := ctx.Value(adminClaimsKey).(*common.AdminClaims); ok {
		return claims
	}
	return nil
}

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the id assigned by the request id middleware, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
