// Package workspace publishes finished research to the team's document
// workspace (Notion).
package workspace

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
	"github.com/DavidEscobar2707/bta-onboarding/pkg/notion"
)

// ErrorKind classifies workspace write failures for callers that retry
// or surface them differently.
type ErrorKind string

const (
	ErrAuthFailed ErrorKind = "auth_failed"
	ErrNotFound   ErrorKind = "not_found"
	ErrFieldError ErrorKind = "field_error"
	ErrUnknown    ErrorKind = "unknown"
)

// Error wraps an upstream workspace failure with its classification.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "workspace: " + string(e.Kind)
	}
	return "workspace: " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the classification from an error chain, defaulting to
// ErrUnknown.
func KindOf(err error) ErrorKind {
	var werr *Error
	if eris.As(err, &werr) {
		return werr.Kind
	}
	return ErrUnknown
}

// classify maps Notion API error text onto an ErrorKind. Best-effort
// substring matching; anything unrecognized is unknown.
func classify(err error) *Error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "restricted") || strings.Contains(msg, "401"):
		return &Error{Kind: ErrAuthFailed, Err: err}
	case strings.Contains(msg, "could not find") || strings.Contains(msg, "object_not_found") || strings.Contains(msg, "404"):
		return &Error{Kind: ErrNotFound, Err: err}
	case strings.Contains(msg, "validation") || strings.Contains(msg, "property") || strings.Contains(msg, "400"):
		return &Error{Kind: ErrFieldError, Err: err}
	default:
		return &Error{Kind: ErrUnknown, Err: err}
	}
}

// Payload is the full onboarding data set pushed to the workspace.
type Payload struct {
	ClientDomain string
	ClientData   *model.ResearchRecord
	Competitors  []model.CompetitorRef
	CompData     map[string]*model.ResearchRecord
	LikedPosts   []string
	CustomURLs   []string
}

// WriteResult reports the outcome of a workspace publish.
type WriteResult struct {
	Success  bool   `json:"success"`
	RecordID string `json:"recordId"`
	Verified bool   `json:"verified"`
}

// NotionWriter publishes onboarding results into a Notion database, one
// page per company, with competitor pages linked by a Domain property.
type NotionWriter struct {
	client notion.Client
	dbID   string
}

// NewNotionWriter creates a writer targeting the given database.
func NewNotionWriter(client notion.Client, dbID string) *NotionWriter {
	return &NotionWriter{client: client, dbID: dbID}
}

// PublishOnboarding writes the client page and one page per researched
// competitor, then verifies the client page landed by querying it back.
// Competitor page failures are logged and absorbed; only a client page
// failure is returned.
func (w *NotionWriter) PublishOnboarding(ctx context.Context, p Payload) (*WriteResult, error) {
	if p.ClientData == nil {
		return nil, &Error{Kind: ErrFieldError, Err: eris.New("payload has no client record")}
	}

	pageID, err := w.upsertCompany(ctx, p.ClientDomain, p.ClientData, "Client")
	if err != nil {
		return nil, err
	}

	for domain, rec := range p.CompData {
		if rec == nil {
			continue
		}
		if _, err := w.upsertCompany(ctx, domain, rec, "Competitor"); err != nil {
			zap.L().Warn("workspace: competitor page write failed",
				zap.String("domain", domain),
				zap.String("kind", string(KindOf(err))),
				zap.Error(err),
			)
		}
	}

	verified := w.verify(ctx, p.ClientDomain)
	return &WriteResult{Success: true, RecordID: pageID, Verified: verified}, nil
}

// upsertCompany creates the company page, or updates the existing one
// when a page with the same domain is already present.
func (w *NotionWriter) upsertCompany(ctx context.Context, domain string, rec *model.ResearchRecord, role string) (string, error) {
	props := w.pageProperties(domain, rec, role)

	existing, err := w.findByDomain(ctx, domain)
	if err != nil {
		return "", err
	}
	if existing != "" {
		page, err := w.client.UpdatePage(ctx, existing, &notionapi.PageUpdateRequest{Properties: props})
		if err != nil {
			return "", classify(err)
		}
		return string(page.ID), nil
	}

	page, err := w.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: notionapi.DatabaseID(w.dbID)},
		Properties: props,
	})
	if err != nil {
		return "", classify(err)
	}
	return string(page.ID), nil
}

func (w *NotionWriter) findByDomain(ctx context.Context, domain string) (string, error) {
	id, err := notion.QueryByDomain(ctx, w.client, w.dbID, domain)
	if err != nil {
		return "", classify(err)
	}
	return id, nil
}

func (w *NotionWriter) verify(ctx context.Context, domain string) bool {
	id, err := w.findByDomain(ctx, domain)
	if err != nil {
		zap.L().Debug("workspace: verify query failed", zap.String("domain", domain), zap.Error(err))
		return false
	}
	return id != ""
}

func (w *NotionWriter) pageProperties(domain string, rec *model.ResearchRecord, role string) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: deref(rec.Name, domain)}}},
		},
		"Domain": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: domain}}},
		},
		"Role": notionapi.SelectProperty{
			Select: notionapi.Option{Name: role},
		},
		"Confidence": notionapi.SelectProperty{
			Select: notionapi.Option{Name: confidenceLabel(rec.Confidence)},
		},
	}
	if rec.About != nil {
		props["About"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: clamp(*rec.About, 1900)}}},
		}
	}
	if rec.USP != nil {
		props["USP"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: clamp(*rec.USP, 1900)}}},
		}
	}
	if len(rec.Features) > 0 {
		props["Features"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: clamp(strings.Join(rec.Features, ", "), 1900)}}},
		}
	}
	if rec.ResearchDate != "" {
		props["Research Date"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: rec.ResearchDate}}},
		}
	}
	return props
}

func confidenceLabel(c model.Confidence) string {
	if c == "" {
		return "unknown"
	}
	return string(c)
}

func deref(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

// clamp keeps rich text under Notion's 2000-char property limit,
// cutting on a rune boundary so the result stays valid UTF-8.
func clamp(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
