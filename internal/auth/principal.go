package auth

import "context"

// Principal is the authenticated caller. Seniors are verified mentors who
// answer questions; staff moderate.
type Principal struct {
	ID       string `json:"id"`
	IsSenior bool   `json:"is_senior"`
	IsStaff  bool   `json:"is_staff"`
}

type contextKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the principal on ctx, or nil for anonymous callers.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(contextKey{}).(*Principal)
	return p
}

// UserID is the caller's id, empty when anonymous.
func (p *Principal) UserID() string {
	if p == nil {
		return ""
	}
	return p.ID
}
