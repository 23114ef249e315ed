package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/mailer"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DigestService builds and mails the outstanding-balance digest
type DigestService struct {
	reports    *ReportService
	mailer     mailer.Mailer
	recipients []string
	metrics    *Metrics
}

// NewDigestService creates a new DigestService. m may be nil, in which case Send fails with ErrMailerDisabled.
func NewDigestService(reports *ReportService, m mailer.Mailer, recipients []string, metrics *Metrics) *DigestService {
	return &DigestService{
		reports:    reports,
		mailer:     m,
		recipients: recipients,
		metrics:    metrics,
	}
}

// RenderedDigest is a digest plus its email bodies
type RenderedDigest struct {
	Digest  *domain.OutstandingDigest `json:"digest"`
	Subject string                    `json:"subject"`
	HTML    string                    `json:"html"`
	Text    string                    `json:"text"`
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"inr":   FormatINR,
	"label": func(m domain.Month) string { return m.Label() },
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
<h2>Outstanding balances {{.FinancialYear}}</h2>
<table cellpadding="6" cellspacing="0" border="1" style="border-collapse: collapse;">
<thead>
<tr><th align="left">Client</th><th align="left">Name</th><th align="left">As of</th><th align="right">Outstanding</th></tr>
</thead>
<tbody>
{{- range .Lines}}
<tr><td>{{.ClientID}}</td><td>{{.ClientName}}</td><td>{{label .Month}} {{.Year}}</td><td align="right">{{inr .TotalOutstanding}}</td></tr>
{{- end}}
</tbody>
<tfoot>
<tr><th colspan="3" align="left">Total</th><th align="right">{{inr .GrandTotal}}</th></tr>
</tfoot>
</table>
</body>
</html>
`))

// Build returns the digest for fy, or the configured financial year when fy is nil
func (s *DigestService) Build(ctx context.Context, fy *domain.FinancialYear) (*RenderedDigest, error) {
	digest, err := s.reports.OutstandingDigest(ctx, fy)
	if err != nil {
		return nil, fmt.Errorf("failed to build digest: %w", err)
	}
	return Render(digest)
}

// Render turns a digest into the subject, HTML and plain-text bodies
func Render(digest *domain.OutstandingDigest) (*RenderedDigest, error) {
	var html bytes.Buffer
	if err := digestTemplate.Execute(&html, digest); err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Outstanding balances %s\n\n", digest.FinancialYear)
	for _, line := range digest.Lines {
		fmt.Fprintf(&text, "%-10s %-30s %s %d  %s\n",
			line.ClientID, line.ClientName, line.Month.Label(), line.Year, FormatINR(line.TotalOutstanding))
	}
	fmt.Fprintf(&text, "\nTotal: %s\n", FormatINR(digest.GrandTotal))

	return &RenderedDigest{
		Digest:  digest,
		Subject: fmt.Sprintf("Royalty outstanding digest %s", digest.FinancialYear),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// Send builds the digest and mails it to the configured recipients
func (s *DigestService) Send(ctx context.Context, fy *domain.FinancialYear) (*RenderedDigest, error) {
	if s.mailer == nil || len(s.recipients) == 0 {
		return nil, domain.ErrMailerDisabled
	}

	rendered, err := s.Build(ctx, fy)
	if err != nil {
		return nil, err
	}
	if len(rendered.Digest.Lines) == 0 {
		return rendered, domain.ErrNoDigestEntries
	}

	err = s.mailer.Send(ctx, mailer.Message{
		To:      s.recipients,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		return rendered, fmt.Errorf("failed to send digest: %w", err)
	}

	s.metrics.digestSent()
	log.Info().
		Str("financial_year", rendered.Digest.FinancialYear.String()).
		Int("clients", len(rendered.Digest.Lines)).
		Str("grand_total", rendered.Digest.GrandTotal.StringFixed(2)).
		Msg("Outstanding digest sent")
	return rendered, nil
}

// FormatINR formats an amount with the rupee sign and Indian digit grouping, e.g. ₹12,34,567.80
func FormatINR(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	if len(whole) > 3 {
		head, tail := whole[:len(whole)-3], whole[len(whole)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		whole = strings.Join(groups, ",") + "," + tail
	}
	return sign + "₹" + whole + "." + frac
}
