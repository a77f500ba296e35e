package assistant

import "GutAssistant/internal/entity"

var canonicalTemplates = map[entity.IntentLabel]string{
	entity.IntentGutHealth:      "🧬 The gut microbiome supports digestion, immunity, and mental health. Based on your profile, focus on anti-inflammatory foods.",
	entity.IntentProbioticInfo:  "🧫 Probiotics are beneficial microbes found in yogurt, kefir, kimchi, and supplements.",
	entity.IntentFiberInfo:      "🌾 Fiber feeds your good gut bacteria. Eat fruits, veggies, legumes, and oats. Your Bifidobacterium levels could benefit from more prebiotic fiber.",
	entity.IntentDiversityInfo:  "🌈 A diverse microbiome is a healthy one. Your Shannon Index of 2.1 is moderate - aim for more variety in plant foods.",
	entity.IntentDietSuggestion: "🥗 Based on your microbiome analysis: increase fermented foods, add ginger for digestion, and reduce processed sugars to balance Firmicutes.",
	entity.IntentHello:          "👋 Hello! I'm your personalized gut health assistant. I can analyze your microbiome, provide dietary recommendations, and learn from your feedback.",
	entity.IntentUnknown:        "❓ I'm still learning about your specific needs. Try asking about gut health, probiotics, fiber, diet, or your microbiome analysis.",
}

// profileNotes are appended to an intent's template when the profile matches.
var profileNotes = map[entity.IntentLabel]struct {
	allergy string
	note    string
}{
	entity.IntentProbioticInfo: {allergy: "dairy", note: "Given your dairy allergy, try coconut yogurt or fermented vegetables."},
}

var dietRecommendations = []string{
	"🥬 Increase leafy greens to boost Bacteroidetes",
	"🫖 Try ginger tea for digestive support",
	"🥜 Add almonds and walnuts for healthy fats",
	"🍄 Include mushrooms for immune support",
	"🧘 Practice meditation to reduce stress (current: 6/10)",
}

// CanonicalTemplate returns the shipped response text for intent. Labels
// outside the closed set fall back to the unknown template.
func CanonicalTemplate(intent entity.IntentLabel) string {
	if text, ok := canonicalTemplates[intent]; ok {
		return text
	}
	return canonicalTemplates[entity.IntentUnknown]
}

// Recommendations is non-empty for diet_suggestion only.
func Recommendations(intent entity.IntentLabel) []string {
	if intent != entity.IntentDietSuggestion {
		return []string{}
	}
	return append([]string(nil), dietRecommendations...)
}

// PersonalizedTemplate is CanonicalTemplate plus any note the profile calls
// for.
func PersonalizedTemplate(intent entity.IntentLabel, profile entity.UserProfile) string {
	text := CanonicalTemplate(intent)
	if extra, ok := profileNotes[intent]; ok && profile.HasAllergy(extra.allergy) {
		text += " " + extra.note
	}
	return text
}

func CanonicalPayload(intent entity.IntentLabel, profile entity.UserProfile) entity.ResponsePayload {
	return entity.ResponsePayload{
		ResponseText:    PersonalizedTemplate(intent, profile),
		Recommendations: Recommendations(intent),
		Provenance:      entity.ProvenanceCanonical,
	}
}
