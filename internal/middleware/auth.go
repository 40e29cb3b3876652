package middleware

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Ayash-Bera/campusqa/internal/auth"
)

const (
	DemoUserHeader   = "X-Demo-User"
	DemoSeniorHeader = "X-Demo-Senior"
	DemoStaffHeader  = "X-Demo-Staff"
)

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(token string) (*auth.Principal, error)
}

// Authenticate attaches the caller's principal to the request context when
// credentials check out. It never rejects a request: missing or bad
// credentials leave the caller anonymous and handlers decide what that
// means. In demo mode the X-Demo-* headers stand in for a token.
func Authenticate(verifier TokenVerifier, demoMode bool, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var principal *auth.Principal

		if token := bearerToken(c); token != "" && verifier != nil {
			p, err := verifier.Verify(token)
			if err != nil {
				logger.WithError(err).WithField("ip_address", c.ClientIP()).Debug("Rejected bearer token")
			} else {
				principal = p
			}
		}

		if principal == nil && demoMode {
			if id := strings.TrimSpace(c.GetHeader(DemoUserHeader)); id != "" {
				principal = &auth.Principal{
					ID:       id,
					IsSenior: headerBool(c, DemoSeniorHeader),
					IsStaff:  headerBool(c, DemoStaffHeader),
				}
			}
		}

		if principal != nil {
			c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) *auth.Principal {
	return auth.FromContext(c.Request.Context())
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func headerBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(c.GetHeader(name)))
	return err == nil && v
}
