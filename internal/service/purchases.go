package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fyodorvi/gem-guru/internal/domain"
)

// ============================================================
// Purchase CRUD. Every mutation returns the refreshed calculation
// so the UI can repaint without a second round trip.
// ============================================================

// AddPurchase appends a purchase with a fresh id.
func (s *GuruService) AddPurchase(ctx context.Context, userID string, p domain.Purchase) (*domain.Calculation, error) {
	ctx, span := tracer.Start(ctx, "GuruService.AddPurchase")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := validatePurchase(p); err != nil {
		return nil, err
	}

	data, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.ID = uuid.NewString()
	data.Purchases = append(data.Purchases, p)

	if err := s.saveState(ctx, userID, data); err != nil {
		return nil, err
	}

	s.logger.Info("purchase added",
		zap.String("user_id", userID),
		zap.String("purchase_id", p.ID),
		zap.String("name", p.Name),
	)

	return s.calculate(userID, data), nil
}

// UpdatePurchase overwrites an existing purchase, keeping its id.
func (s *GuruService) UpdatePurchase(ctx context.Context, userID, purchaseID string, p domain.Purchase) (*domain.Calculation, error) {
	ctx, span := tracer.Start(ctx, "GuruService.UpdatePurchase")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("purchase.id", purchaseID))

	if err := validatePurchase(p); err != nil {
		return nil, err
	}

	data, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range data.Purchases {
		if data.Purchases[i].ID == purchaseID {
			p.ID = purchaseID
			data.Purchases[i] = p
			found = true
			break
		}
	}
	if !found {
		return nil, &domain.ErrNotFound{Resource: "purchase", ID: purchaseID}
	}

	if err := s.saveState(ctx, userID, data); err != nil {
		return nil, err
	}

	return s.calculate(userID, data), nil
}

// RemovePurchase deletes a purchase. Removing an unknown id is a no-op.
func (s *GuruService) RemovePurchase(ctx context.Context, userID, purchaseID string) (*domain.Calculation, error) {
	ctx, span := tracer.Start(ctx, "GuruService.RemovePurchase")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("purchase.id", purchaseID))

	data, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := data.Purchases[:0]
	for _, existing := range data.Purchases {
		if existing.ID != purchaseID {
			kept = append(kept, existing)
		}
	}
	data.Purchases = kept

	if err := s.saveState(ctx, userID, data); err != nil {
		return nil, err
	}

	return s.calculate(userID, data), nil
}

// RemovePaidOff deletes the given purchases in one write. Used after a
// statement flags settled purchases the user no longer wants listed.
func (s *GuruService) RemovePaidOff(ctx context.Context, userID string, purchaseIDs []string) (*domain.Calculation, error) {
	ctx, span := tracer.Start(ctx, "GuruService.RemovePaidOff")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.Int("count", len(purchaseIDs)))

	if len(purchaseIDs) == 0 {
		return nil, &domain.ErrValidation{Field: "purchaseIds", Message: "must not be empty"}
	}

	data, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	drop := make(map[string]bool, len(purchaseIDs))
	for _, id := range purchaseIDs {
		drop[id] = true
	}

	kept := make([]domain.Purchase, 0, len(data.Purchases))
	for _, existing := range data.Purchases {
		if !drop[existing.ID] {
			kept = append(kept, existing)
		}
	}

	s.logger.Info("removing paid-off purchases",
		zap.String("user_id", userID),
		zap.Int("before", len(data.Purchases)),
		zap.Int("after", len(kept)),
	)
	data.Purchases = kept

	if err := s.saveState(ctx, userID, data); err != nil {
		return nil, err
	}

	return s.calculate(userID, data), nil
}

// GetProfile returns the user's settings, applying defaults for new users.
func (s *GuruService) GetProfile(ctx context.Context, userID string) (domain.ProfileSettings, error) {
	ctx, span := tracer.Start(ctx, "GuruService.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	data, err := s.loadState(ctx, userID)
	if err != nil {
		return domain.ProfileSettings{}, err
	}
	return data.Settings, nil
}

// SetProfile replaces the user's settings.
func (s *GuruService) SetProfile(ctx context.Context, userID string, settings domain.ProfileSettings) error {
	ctx, span := tracer.Start(ctx, "GuruService.SetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if settings.PaymentDueDate.IsZero() {
		return &domain.ErrValidation{Field: "paymentDueDate", Message: "is required"}
	}
	if settings.StatementDate.IsZero() {
		stmt := settings.PaymentDueDate.AddDate(0, 0, -21)
		settings.StatementDate = domain.NewTimestamp(stmt.Year(), stmt.Month(), stmt.Day())
	}

	data, err := s.loadState(ctx, userID)
	if err != nil {
		return err
	}
	data.Settings = settings

	return s.saveState(ctx, userID, data)
}

func validatePurchase(p domain.Purchase) error {
	switch {
	case p.Name == "":
		return &domain.ErrValidation{Field: "name", Message: "is required"}
	case p.Total <= 0:
		return &domain.ErrValidation{Field: "total", Message: "must be positive"}
	case p.Remaining < 0:
		return &domain.ErrValidation{Field: "remaining", Message: "must not be negative"}
	case p.Remaining > p.Total:
		return &domain.ErrValidation{Field: "remaining", Message: "must not exceed total"}
	case p.StartDate.IsZero():
		return &domain.ErrValidation{Field: "startDate", Message: "is required"}
	case p.ExpiryDate.IsZero():
		return &domain.ErrValidation{Field: "expiryDate", Message: "is required"}
	case p.ExpiryDate.Before(p.StartDate.Time):
		return &domain.ErrValidation{Field: "expiryDate", Message: "must be after startDate"}
	case p.HasMinimumPayment && p.MinimumPayment <= 0:
		return &domain.ErrValidation{Field: "minimumPayment", Message: "must be positive"}
	}
	return nil
}
