package auth

import (
	"context"
	"os"

	"github.com/golang-jwt/jwt/v4"
)

const (
	XUserNameHeader = "X-User-Name"
	XUserRoleHeader = "X-User-Role"
)

// JWTKey signs and verifies access tokens; overridable via env for deployments.
var JWTKey = []byte(envOr("JWT_KEY", "equipment-reservation-key"))

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type Claims struct {
	Profile struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"profile"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type userNameKey struct{}
type userRoleKey struct{}

func SetAuthContext(ctx context.Context, username, role string) context.Context {
	ctx = context.WithValue(ctx, userNameKey{}, username)
	return context.WithValue(ctx, userRoleKey{}, role)
}

func UserName(ctx context.Context) string {
	name, _ := ctx.Value(userNameKey{}).(string)
	return name
}

func UserRole(ctx context.Context) string {
	role, _ := ctx.Value(userRoleKey{}).(string)
	return role
}
