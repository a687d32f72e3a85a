// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/fyodorvi/gem-guru/internal/domain"
)

// UserStore persists each user's purchase list and profile settings.
// Implemented by the Supabase adapter and the local SQLite adapter. A user
// with no stored data yields (nil, nil); the service applies defaults.
type UserStore interface {
	LoadUserData(ctx context.Context, userID string) (*domain.UserData, error)
	SaveUserData(ctx context.Context, userID string, data *domain.UserData) error
}

// AuthStore looks up login credentials.
type AuthStore interface {
	GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error)
}

// TextExtractor pulls the text layer out of a PDF document.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
