package assistant

import (
	"GutAssistant/internal/entity"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalTemplates_CoverEveryIntent(t *testing.T) {
	require.Len(t, canonicalTemplates, len(entity.IntentLabels))
	for _, intent := range entity.IntentLabels {
		require.NotEmpty(t, canonicalTemplates[intent], intent)
	}
}

func TestCanonicalTemplate_FallsBackToUnknown(t *testing.T) {
	require.Equal(t, canonicalTemplates[entity.IntentUnknown], CanonicalTemplate("not_an_intent"))
}

func TestRecommendations(t *testing.T) {
	for _, intent := range entity.IntentLabels {
		recs := Recommendations(intent)
		require.NotNil(t, recs)
		if intent == entity.IntentDietSuggestion {
			require.Len(t, recs, 5)
			continue
		}
		require.Empty(t, recs, intent)
	}

	recs := Recommendations(entity.IntentDietSuggestion)
	recs[0] = "mutated"
	require.NotEqual(t, "mutated", Recommendations(entity.IntentDietSuggestion)[0])
}

func TestPersonalizedTemplate_DairyNote(t *testing.T) {
	note := "Given your dairy allergy, try coconut yogurt or fermented vegetables."

	plain := PersonalizedTemplate(entity.IntentProbioticInfo, entity.UserProfile{Allergies: []string{"gluten"}})
	require.Equal(t, CanonicalTemplate(entity.IntentProbioticInfo), plain)
	require.NotContains(t, plain, note)

	dairy := PersonalizedTemplate(entity.IntentProbioticInfo, entity.UserProfile{Allergies: []string{"gluten", "Dairy"}})
	require.Equal(t, CanonicalTemplate(entity.IntentProbioticInfo)+" "+note, dairy)

	require.Equal(t, CanonicalTemplate(entity.IntentFiberInfo),
		PersonalizedTemplate(entity.IntentFiberInfo, entity.UserProfile{Allergies: []string{"dairy"}}))
}
