package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/infra/resilience"
)

// UserStore implements port.UserStore on the user_data table. Each user's
// purchases and profile settings live in one JSON payload column, written
// atomically as a whole.
type UserStore struct {
	client *Client
}

// NewUserStore creates a Supabase-backed user data store.
func NewUserStore(client *Client) *UserStore {
	return &UserStore{client: client}
}

type userDataRow struct {
	UserID    string          `json:"user_id"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// LoadUserData fetches a user's stored state. Users with no row yet yield
// (nil, nil).
func (s *UserStore) LoadUserData(ctx context.Context, userID string) (*domain.UserData, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LoadUserData")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var data *domain.UserData

	_, err := s.client.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, s.client.cfg, func() error {
			path := fmt.Sprintf("user_data?user_id=eq.%s&limit=1", url.QueryEscape(userID))
			body, err := s.client.do(ctx, http.MethodGet, path, "", nil)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				data = nil
				return nil
			}

			var rows []userDataRow
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("failed to decode user data: %w", err)
			}
			if len(rows) == 0 {
				data = nil
				return nil
			}

			var decoded domain.UserData
			if err := json.Unmarshal(rows[0].Payload, &decoded); err != nil {
				return fmt.Errorf("failed to decode user data payload: %w", err)
			}
			data = &decoded
			return nil
		})
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/user_data", Err: err}
	}

	return data, nil
}

// SaveUserData upserts a user's full state in one write.
func (s *UserStore) SaveUserData(ctx context.Context, userID string, data *domain.UserData) error {
	ctx, span := tracer.Start(ctx, "Supabase.SaveUserData")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode user data: %w", err)
	}

	row := userDataRow{
		UserID:    userID,
		Payload:   payload,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	_, err = s.client.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, s.client.cfg, func() error {
			_, err := s.client.do(ctx, http.MethodPost, "user_data?on_conflict=user_id",
				"resolution=merge-duplicates,return=minimal", row)
			return err
		})
	})

	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/user_data", Err: err}
	}
	return nil
}
