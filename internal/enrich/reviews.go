// Package enrich augments finished research records with premium
// directory lookups that providers tend to miss.
package enrich

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/internal/model"
	"github.com/DavidEscobar2707/bta-onboarding/pkg/google"
)

// ReviewLookup pulls a company's Google rating via the Places API.
type ReviewLookup struct {
	client google.Client
}

// NewReviewLookup wraps a Places client.
func NewReviewLookup(client google.Client) *ReviewLookup {
	return &ReviewLookup{client: client}
}

// AddGoogleReview looks the company up on Google and appends its rating
// to the record's reviews unless a Google entry is already present.
// Lookup failure is non-fatal; the record is returned unchanged.
func (r *ReviewLookup) AddGoogleReview(ctx context.Context, rec *model.ResearchRecord) {
	if r == nil || r.client == nil || rec == nil {
		return
	}
	for _, rev := range rec.Reviews {
		if strings.EqualFold(rev.Platform, "google") {
			return
		}
	}

	query := rec.Domain
	if rec.Name != nil && *rec.Name != "" {
		query = *rec.Name
	}

	resp, err := r.client.TextSearch(ctx, query)
	if err != nil {
		zap.L().Debug("enrich: places lookup failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return
	}
	if len(resp.Places) == 0 || resp.Places[0].UserRatingCount == 0 {
		return
	}

	place := resp.Places[0]
	rec.Reviews = append(rec.Reviews, model.Review{
		Platform: "Google",
		Score:    strconv.FormatFloat(place.Rating, 'f', 1, 64),
		Count:    strconv.Itoa(place.UserRatingCount),
		Summary:  "Google rating for " + place.DisplayName.Text,
	})
}
