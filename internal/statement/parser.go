// Package statement parses Gem Visa PDF statement text into promotional
// purchase records. Input is the raw text layer of the PDF; extraction from
// the binary is the caller's concern.
package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fyodorvi/gem-guru/internal/domain"
)

const sectionHeading = "Unexpired Gem Visa promotional transactions"

var (
	leadingDateRe = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})`)
	anyDateRe     = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)
	amountPairRe  = regexp.MustCompile(`^\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	dueDateRe     = regexp.MustCompile(`(?i)Due date:\s*(\d{1,2}/\d{1,2}/\d{4})`)

	fixedPaymentRe    = regexp.MustCompile(`(?i)Fixed payment \$?([\d,]+\.?\d*) required`)
	monthlyWithTermRe = regexp.MustCompile(`(?i)(\d+)\s*months?\s*interest\s*free.*monthly\s*payments?\s*required`)
	monthlyRequiredRe = regexp.MustCompile(`(?i)monthly\s*payments?\s*required`)
	interestFreeRe    = regexp.MustCompile(`(?i)(\d+)\s*months?\s*interest\s*free`)
	paymentMentionRe  = regexp.MustCompile(`(?i)payment`)

	termPrefixRe       = regexp.MustCompile(`(?i)^\d+\s*months?\s*interest\s*free\s*`)
	monthlyNoiseRe     = regexp.MustCompile(`(?i)Monthly\s*payments?\s*required\s*`)
	fixedTailRe        = regexp.MustCompile(`(?i)Fixed\s*payment.*$`)
	instalmentPrefixRe = regexp.MustCompile(`(?i)^\d+mth\s*instalment\s*int\s*free\s*`)
	merchantTailRe     = regexp.MustCompile(`([A-Za-z][A-Za-z\s\-\.]+)$`)

	separatorLineRe = regexp.MustCompile(`^[-\s]+$`)
	lineSplitRe     = regexp.MustCompile(`[\n\r]+`)
)

// Parse scans statement text for the promotional transactions table and
// returns every purchase line it can decode, plus the statement's payment due
// date when present. Failures are reported in the result rather than as an
// error; the extracted text is retained for diagnosis either way.
func Parse(fullText string) *domain.StatementParseResult {
	result := &domain.StatementParseResult{
		ParsedPurchases:   []domain.ParsedPurchase{},
		ExtractedSections: []string{fullText},
	}

	if due, ok := extractDueDate(fullText); ok {
		result.DueDate = &due
	}

	idx := indexFold(fullText, sectionHeading)
	if idx < 0 {
		result.Error = fmt.Sprintf("could not find %q section in the PDF", sectionHeading)
		return result
	}

	section := sectionBody(fullText[idx+len(sectionHeading):])

	purchases := parseSection(section, fullText)
	result.ParsedPurchases = purchases

	if len(purchases) == 0 {
		result.Error = "no promotional purchases found in the statement; the PDF text layer may be malformed"
		result.ExtractedSections = append(result.ExtractedSections, section)
		return result
	}

	result.Success = true
	return result
}

// sectionBody cuts the section off at the first blank line, form feed, or
// end of text, whichever comes first.
func sectionBody(rest string) string {
	end := len(rest)
	if i := strings.Index(rest, "\n\n"); i >= 0 && i < end {
		end = i
	}
	if i := strings.IndexByte(rest, '\f'); i >= 0 && i < end {
		end = i
	}
	return rest[:end]
}

func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

// parseSection walks the table line by line. Column headers may be split
// across lines by the PDF text layer, so each header fragment is skipped
// wherever it appears.
func parseSection(section, fullText string) []domain.ParsedPurchase {
	purchases := []domain.ParsedPurchase{}

	for _, raw := range lineSplitRe.Split(section, -1) {
		line := strings.TrimSpace(raw)
		if len(line) < 10 {
			continue
		}
		if strings.Contains(line, "Statement date") ||
			strings.Contains(line, "Description") ||
			strings.Contains(line, "Total purchase") ||
			strings.Contains(line, "Outstanding balance") ||
			strings.Contains(line, "Promotion Expiry") {
			continue
		}
		if separatorLineRe.MatchString(line) {
			continue
		}

		p, ok := parsePurchaseLine(line, fullText)
		if ok {
			purchases = append(purchases, p)
		}
	}

	return purchases
}

// parsePurchaseLine decodes one table row. The PDF text layer concatenates
// the columns without separators, e.g.
//
//	18/09/2023$908.00$465.4517/09/2025Apple Financial Services
//	06/05/2025$1,364.00$1,364.0021/11/202506 months interest free
//
// so the row is taken apart positionally: leading date, two $ amounts, the
// next date, then the merchant description with payment-term noise stripped.
func parsePurchaseLine(line, fullText string) (domain.ParsedPurchase, bool) {
	var p domain.ParsedPurchase

	startMatch := leadingDateRe.FindString(line)
	if startMatch == "" {
		return p, false
	}
	startDate, err := parseStatementDate(startMatch)
	if err != nil {
		return p, false
	}

	afterStart := line[len(startMatch):]
	amounts := amountPairRe.FindStringSubmatch(afterStart)
	if amounts == nil {
		return p, false
	}
	total, err := amountToCents(amounts[1])
	if err != nil {
		return p, false
	}
	outstanding, err := amountToCents(amounts[2])
	if err != nil {
		return p, false
	}

	afterAmounts := afterStart[len(amounts[0]):]
	expiryMatch := anyDateRe.FindString(afterAmounts)
	if expiryMatch == "" {
		return p, false
	}
	expiryDate, err := parseStatementDate(expiryMatch)
	if err != nil {
		return p, false
	}

	if total <= 0 || outstanding < 0 || outstanding > total {
		return p, false
	}

	afterExpiry := afterAmounts[strings.Index(afterAmounts, expiryMatch)+len(expiryMatch):]
	name := cleanDescription(afterExpiry, startMatch)

	p = domain.ParsedPurchase{
		Name:       name,
		Total:      total,
		Remaining:  outstanding,
		StartDate:  startDate,
		ExpiryDate: expiryDate,
	}
	applyPaymentContext(&p, line, fullText)
	return p, true
}

// cleanDescription strips payment-term boilerplate off the merchant name and
// falls back to a generic label when nothing usable remains.
func cleanDescription(text, startDate string) string {
	desc := strings.TrimSpace(text)
	desc = termPrefixRe.ReplaceAllString(desc, "")
	desc = monthlyNoiseRe.ReplaceAllString(desc, "")
	desc = fixedTailRe.ReplaceAllString(desc, "")
	desc = instalmentPrefixRe.ReplaceAllString(desc, "")
	desc = strings.TrimSpace(desc)

	if len(desc) < 3 {
		if m := merchantTailRe.FindStringSubmatch(text); m != nil {
			desc = strings.TrimSpace(m[1])
		}
	}
	if len(desc) < 3 {
		desc = "Purchase " + startDate
	}
	return desc
}

// applyPaymentContext scans the row and the lines immediately after it for
// payment requirements. The window stops at the next row so one purchase's
// terms never bleed into another's.
func applyPaymentContext(p *domain.ParsedPurchase, line, fullText string) {
	p.PaymentType = domain.PaymentTypeNone

	lines := lineSplitRe.Split(fullText, -1)
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	probe := line
	if len(probe) > 20 {
		probe = probe[:20]
	}
	current := -1
	for i, l := range lines {
		if strings.Contains(l, probe) {
			current = i
			break
		}
	}

	var window []string
	if current >= 0 {
		for i := current; i < len(lines) && i < current+4; i++ {
			window = append(window, lines[i])
			if i > current && leadingDateRe.MatchString(lines[i]) {
				break
			}
		}
	} else {
		window = []string{line}
	}
	context := strings.Join(window, " ")

	if m := fixedPaymentRe.FindStringSubmatch(context); m != nil {
		amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err == nil {
			p.MinimumPayment = amount
			p.PaymentType = domain.PaymentTypeFixed
			return
		}
	}

	if m := monthlyWithTermRe.FindStringSubmatch(context); m != nil {
		p.InterestFreeMonths, _ = strconv.Atoi(m[1])
		p.PaymentType = domain.PaymentTypeMonthly
		return
	}

	if monthlyRequiredRe.MatchString(context) {
		if m := interestFreeRe.FindStringSubmatch(context); m != nil {
			p.InterestFreeMonths, _ = strconv.Atoi(m[1])
			p.PaymentType = domain.PaymentTypeMonthly
			return
		}
	}

	// A bare interest-free term only implies a payment plan when payments
	// are mentioned nearby.
	if m := interestFreeRe.FindStringSubmatch(context); m != nil && paymentMentionRe.MatchString(context) {
		p.InterestFreeMonths, _ = strconv.Atoi(m[1])
		p.PaymentType = domain.PaymentTypeMonthly
	}
}

func extractDueDate(fullText string) (domain.Timestamp, bool) {
	m := dueDateRe.FindStringSubmatch(fullText)
	if m == nil {
		return domain.Timestamp{}, false
	}
	t, err := parseStatementDate(m[1])
	if err != nil {
		return domain.Timestamp{}, false
	}
	return t, true
}

// parseStatementDate reads the statement's DD/MM/YYYY format as a UTC
// calendar day, matching how purchase dates are stored.
func parseStatementDate(s string) (domain.Timestamp, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return domain.Timestamp{}, fmt.Errorf("statement: invalid date %q", s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return domain.Timestamp{}, fmt.Errorf("statement: invalid day in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return domain.Timestamp{}, fmt.Errorf("statement: invalid month in %q", s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return domain.Timestamp{}, fmt.Errorf("statement: invalid year in %q", s)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return domain.Timestamp{}, fmt.Errorf("statement: date out of range %q", s)
	}
	return domain.NewTimestamp(year, time.Month(month), day), nil
}

// amountToCents converts a statement dollar figure like "1,364.00" to cents.
func amountToCents(s string) (int, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("statement: invalid amount %q: %w", s, err)
	}
	return int(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()), nil
}
