package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
)

// Roles
const (
	RoleCoordinator = "coordinator"
	RoleSupervisor  = "supervisor"
	RoleStudent     = "student"
)

const contextTokenKey = "userToken"

var Roles = []string{RoleCoordinator, RoleSupervisor, RoleStudent}

// Claims represents the authorization claims transmitted via a JWT.
// Subject is the caller's id: a coordinator, a supervisor or a student.
type Claims struct {
	jwt.StandardClaims
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// NewClaims returns claims for the given actor, expiring after conf.Server.JWTExpirationDelta.
func NewClaims(conf *core.Config, subject, role, department string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   subject,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role:       role,
		Department: core.CleanString(department),
	}
}

func (c Claims) Valid() error {
	if err := c.StandardClaims.Valid(); err != nil {
		return err
	}
	if c.Subject == "" {
		return errors.New("token has no subject")
	}
	for _, role := range Roles {
		if c.Role == role {
			return nil
		}
	}
	return errors.Errorf("unknown role %q", c.Role)
}

type jwtSigner struct {
	key []byte
}

func newJWTSigner(conf *core.Config) jwtSigner {
	return jwtSigner{key: []byte(conf.SecretKey)}
}

func (j jwtSigner) config() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    j.key,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

func (j jwtSigner) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(j.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	return newJWTSigner(conf).sign(claims)
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func contextHasAnyRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := getContextClaims(ctx); err == nil {
		for _, role := range roles {
			if claims.Role == role {
				return true
			}
		}
	}
	return false
}

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextClaims(ctx); err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
