package service

import (
	"context"
	"encoding/base64"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/plan"
	"github.com/fyodorvi/gem-guru/internal/statement"
)

const maxStatementBytes = 10 * 1024 * 1024

var hundred = decimal.NewFromInt(100)

// ============================================================
// Statement upload: preview and apply
// ============================================================

// ParseStatementPreview parses an uploaded statement and reports what
// applying it would change, without persisting anything.
func (s *GuruService) ParseStatementPreview(ctx context.Context, userID string, req *domain.StatementRequest) (*domain.StatementParseResult, error) {
	ctx, span := tracer.Start(ctx, "GuruService.ParseStatementPreview")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	result, data, err := s.parseUpload(ctx, userID, req)
	if err != nil || !result.Success {
		return result, err
	}

	parsed := toPurchases(result.ParsedPurchases)
	interim := plan.Preview(data.Purchases, parsed, timestampPtr(result.StatementDate))

	due := data.Settings.PaymentDueDate
	result.CurrentDueDate = &due
	result.InterimResult = interim
	return result, nil
}

// ParseAndApplyStatement parses an uploaded statement, reconciles it into
// the stored purchases, adopts the statement's dates into the profile, and
// returns the refreshed calculation alongside the reconciliation summary.
func (s *GuruService) ParseAndApplyStatement(ctx context.Context, userID string, req *domain.StatementRequest) (*domain.StatementParseResult, error) {
	ctx, span := tracer.Start(ctx, "GuruService.ParseAndApplyStatement")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	result, data, err := s.parseUpload(ctx, userID, req)
	if err != nil || !result.Success {
		return result, err
	}

	parsed := toPurchases(result.ParsedPurchases)
	merged, summary := plan.Reconcile(data.Purchases, parsed, timestampPtr(result.StatementDate))
	data.Purchases = merged

	if result.DueDate != nil {
		data.Settings.PaymentDueDate = *result.DueDate
		s.logger.Info("adopted due date from statement",
			zap.String("user_id", userID),
			zap.Time("due_date", result.DueDate.Time),
		)
	}
	if result.StatementDate != nil {
		data.Settings.StatementDate = *result.StatementDate
	}

	if err := s.saveState(ctx, userID, data); err != nil {
		return nil, err
	}

	s.logger.Info("statement applied",
		zap.String("user_id", userID),
		zap.Int("added", summary.Added),
		zap.Int("updated", summary.Updated),
		zap.Int("potentially_paid_off", summary.PotentiallyPaidOff),
	)

	result.UpsertSummary = summary
	result.Calculation = s.calculate(userID, data)
	return result, nil
}

// parseUpload validates the upload, extracts the PDF text (bounded by the
// parse bulkhead), and parses it. Text extraction and the user-state load
// run concurrently. A nil error with Success=false means the statement was
// readable but not parseable; the caller returns the result as-is.
func (s *GuruService) parseUpload(ctx context.Context, userID string, req *domain.StatementRequest) (*domain.StatementParseResult, *domain.UserData, error) {
	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("statement_parse", time.Since(start)) }()

	if req.MimeType != "application/pdf" {
		return nil, nil, &domain.ErrValidation{Field: "mimeType", Message: "only PDF files are allowed"}
	}
	if req.FileSize > maxStatementBytes {
		return nil, nil, &domain.ErrValidation{Field: "fileSize", Message: "file size exceeds 10MB limit"}
	}

	pdfData, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		return nil, nil, &domain.ErrValidation{Field: "fileData", Message: "invalid base64 payload"}
	}
	if len(pdfData) > maxStatementBytes {
		return nil, nil, &domain.ErrValidation{Field: "fileData", Message: "file size exceeds 10MB limit"}
	}

	var (
		text string
		data *domain.UserData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.parseSem.Acquire(gctx); err != nil {
			return err
		}
		defer s.parseSem.Release()

		extracted, err := s.extractor.ExtractText(gctx, pdfData)
		if err != nil {
			return err
		}
		text = extracted
		return nil
	})
	g.Go(func() error {
		loaded, err := s.loadState(gctx, userID)
		if err != nil {
			return err
		}
		data = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncrStatementParsed("failure")
		s.logger.Warn("statement upload failed",
			zap.String("user_id", userID),
			zap.String("file", req.FileName),
			zap.Error(err),
		)
		return nil, nil, err
	}

	result := statement.Parse(text)
	if result.Success {
		s.metrics.IncrStatementParsed("success")
	} else {
		s.metrics.IncrStatementParsed("failure")
		s.logger.Warn("statement not parseable",
			zap.String("user_id", userID),
			zap.String("file", req.FileName),
			zap.String("reason", result.Error),
		)
	}

	return result, data, nil
}

// toPurchases converts parsed statement lines into stored purchases,
// deriving the contractual minimum from the advertised terms: a monthly plan
// owes ceil(total/months) each cycle, a fixed plan owes its printed dollar
// amount.
func toPurchases(parsed []domain.ParsedPurchase) []domain.Purchase {
	purchases := make([]domain.Purchase, 0, len(parsed))
	for _, row := range parsed {
		p := domain.Purchase{
			ID:         uuid.NewString(),
			Name:       row.Name,
			Total:      row.Total,
			Remaining:  row.Remaining,
			StartDate:  row.StartDate,
			ExpiryDate: row.ExpiryDate,
		}

		switch {
		case row.PaymentType == domain.PaymentTypeMonthly && row.InterestFreeMonths > 0:
			p.HasMinimumPayment = true
			p.MinimumPayment = int(math.Ceil(float64(row.Total) / float64(row.InterestFreeMonths)))
		case row.PaymentType == domain.PaymentTypeFixed && row.MinimumPayment.IsPositive():
			p.HasMinimumPayment = true
			p.MinimumPayment = int(row.MinimumPayment.Mul(hundred).Round(0).IntPart())
		}

		purchases = append(purchases, p)
	}
	return purchases
}

func timestampPtr(ts *domain.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}
