package assistant

import (
	"GutAssistant/internal/entity"
	logPkg "GutAssistant/pkg/log"
	"context"
	"github.com/sirupsen/logrus"
)

type Resolver struct {
	log       *logrus.Logger
	overrides FeedbackStore
}

func NewResolver(log *logrus.Logger, overrides FeedbackStore) *Resolver {
	return &Resolver{
		log:       log,
		overrides: overrides,
	}
}

// Resolve prefers a learned override for signature, then the canonical
// template personalized for profile. Only diet_suggestion carries
// recommendations, whatever the provenance. A failing override lookup
// degrades to the canonical template.
func (r *Resolver) Resolve(ctx context.Context, intent entity.IntentLabel, signature string, profile entity.UserProfile) entity.ResponsePayload {
	payload := CanonicalPayload(intent, profile)

	if signature == "" || r.overrides == nil {
		return payload
	}

	override, found, err := r.overrides.LookupOverride(ctx, signature)
	if err != nil {
		logPkg.WithRequestID(ctx, r.log).WithFields(logrus.Fields{
			"signature": signature,
			"error":     err.Error(),
		}).Warn("Override lookup failed, serving canonical template")
		return payload
	}
	if !found {
		return payload
	}

	return entity.ResponsePayload{
		ResponseText:    override.ResponseText,
		Recommendations: Recommendations(intent),
		Provenance:      entity.ProvenanceCorrected,
	}
}
