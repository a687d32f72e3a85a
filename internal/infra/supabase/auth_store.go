package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/infra/resilience"
)

// AuthStore implements port.AuthStore on the user_credentials table.
type AuthStore struct {
	client *Client
}

// NewAuthStore creates a Supabase-backed credential store.
func NewAuthStore(client *Client) *AuthStore {
	return &AuthStore{client: client}
}

type credentialRow struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    string `json:"created_at"`
}

// GetCredentialByEmail looks up login credentials. Unknown emails return
// domain.ErrNotFound.
func (s *AuthStore) GetCredentialByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCredentialByEmail")
	defer span.End()

	var cred *domain.Credential

	_, err := s.client.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, s.client.cfg, func() error {
			path := fmt.Sprintf("user_credentials?email=eq.%s&limit=1", url.QueryEscape(email))
			body, err := s.client.do(ctx, http.MethodGet, path, "", nil)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				return &domain.ErrNotFound{Resource: "credential", ID: email}
			}

			var rows []credentialRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode credentials: %w", err)
			}
			if len(rows) == 0 {
				return &domain.ErrNotFound{Resource: "credential", ID: email}
			}

			r := rows[0]
			created, _ := time.Parse(time.RFC3339, r.CreatedAt)
			cred = &domain.Credential{
				UserID:       r.UserID,
				Email:        r.Email,
				PasswordHash: r.PasswordHash,
				CreatedAt:    created,
			}
			return nil
		})
	})

	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/credentials", Err: err}
	}

	return cred, nil
}
