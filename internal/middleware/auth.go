package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/auth"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/httputil"
)

const (
	ContextAccount = "account"

	accountCacheTTL     = 30 * time.Second
	accountCacheCleanup = time.Minute
)

// AccountLoader resolves the account named by a token.
type AccountLoader interface {
	Account(ctx context.Context, id uuid.UUID) (*model.Account, error)
}

type AuthMiddleware struct {
	jwtSvc   auth.JWTService
	accounts AccountLoader
	cache    *cache.Cache
}

func NewAuthMiddleware(jwtSvc auth.JWTService, accounts AccountLoader) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:   jwtSvc,
		accounts: accounts,
		cache:    cache.New(accountCacheTTL, accountCacheCleanup),
	}
}

// Authenticate verifies the bearer token, loads the account it names and
// stores it on the context. Account lookups are cached briefly.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			// EventSource clients cannot set headers.
			token = c.Query("access_token")
			ok = token != ""
		}
		if !ok {
			httputil.AbortWithError(c, unauthorized("not authenticated"))
			return
		}

		claims, err := m.jwtSvc.ValidateToken(token)
		if err != nil {
			httputil.AbortWithError(c, unauthorized("not authorized"))
			return
		}

		account, err := m.account(c.Request.Context(), claims.AccountID)
		if err != nil {
			httputil.AbortWithError(c, err)
			return
		}

		c.Set(ContextAccount, account)
		c.Request = c.Request.WithContext(model.WithActor(c.Request.Context(), model.Actor{
			AccountID: account.ID,
			Role:      account.Role,
		}))
		c.Next()
	}
}

// RequireRole rejects callers whose role is not listed. It must run after
// Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			httputil.AbortWithError(c, unauthorized("not authenticated"))
			return
		}
		for _, r := range roles {
			if account.Role == r {
				c.Next()
				return
			}
		}
		httputil.AbortWithError(c, errors.Forbidden(nil))
	}
}

func (m *AuthMiddleware) account(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	if cached, found := m.cache.Get(id.String()); found {
		return cached.(*model.Account), nil
	}
	account, err := m.accounts.Account(ctx, id)
	if err != nil {
		if errors.HasCode(err, errors.ErrUnauthorized) {
			return nil, unauthorized("user not found")
		}
		return nil, err
	}
	m.cache.SetDefault(id.String(), account)
	return account, nil
}

// CurrentAccount returns the account set by Authenticate.
func CurrentAccount(c *gin.Context) (*model.Account, bool) {
	v, ok := c.Get(ContextAccount)
	if !ok {
		return nil, false
	}
	account, ok := v.(*model.Account)
	return account, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func unauthorized(message string) *errors.AppError {
	return &errors.AppError{Code: errors.ErrUnauthorized, Message: message}
}
