package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yoockh/wacrm/internal/models"
	"github.com/yoockh/wacrm/internal/utils"
)

const principalKey = "principal"

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Role         string         `json:"role"`         // usually "authenticated" / "anon"
	AppMetadata  map[string]any `json:"app_metadata"` // put {"role":"admin"} here
	UserMetadata map[string]any `json:"user_metadata"`
}

type AuthOptions struct {
	Secret             string
	Issuer             string // optional
	Audience           string // optional
	DefaultPrincipalID string
}

// Authenticate resolves the request's Principal once. A bearer token must be
// a valid Supabase JWT; a request without one acts as the anonymous
// principal named by DefaultPrincipalID.
func Authenticate(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			setPrincipal(c, models.AnonymousPrincipal(opts.DefaultPrincipalID))
			c.Next()
			return
		}

		if !strings.HasPrefix(auth, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		if opts.Secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "SUPABASE_JWT_SECRET is not set",
			})
			return
		}

		claims := &supabaseClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(opts.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || tok == nil || !tok.Valid {
			abortUnauthorized(c, "invalid token")
			return
		}

		if opts.Issuer != "" && claims.Issuer != opts.Issuer {
			abortUnauthorized(c, "invalid token issuer")
			return
		}
		if opts.Audience != "" && !hasAudience(claims.Audience, opts.Audience) {
			abortUnauthorized(c, "invalid token audience")
			return
		}

		// Supabase puts the user uuid in "sub"
		if claims.Subject == "" {
			abortUnauthorized(c, "missing subject")
			return
		}

		setPrincipal(c, models.Principal{UserID: claims.Subject, Role: appRole(claims)})
		c.Next()
	}
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func appRole(claims *supabaseClaims) models.UserRole {
	if claims.AppMetadata != nil {
		if s, ok := claims.AppMetadata["role"].(string); ok && s != "" {
			return models.UserRole(strings.ToLower(s))
		}
	}
	return models.RoleUser
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Code: utils.CodeUnauthorized, Message: msg})
}

func setPrincipal(c *gin.Context, p models.Principal) {
	c.Set(principalKey, p)
	c.Set("user_id", p.UserID)
	c.Set("role", string(p.Role))
}

// PrincipalFrom returns the principal set by Authenticate.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok && !p.IsZero()
}
