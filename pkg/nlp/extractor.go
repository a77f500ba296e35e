package nlp

import (
	"sort"
	"strings"

	"GutAssistant/internal/entity"
)

const (
	EntityMicrobe   = "microbe"
	EntityFood      = "food"
	EntityAllergen  = "allergen"
	EntityCondition = "condition"
)

type knowledgeTerm struct {
	Name string
	Type string
}

var knowledgeBase = map[string]knowledgeTerm{
	"bifidobacterium": {Name: "Bifidobacterium", Type: EntityMicrobe},
	"firmicutes":      {Name: "Firmicutes", Type: EntityMicrobe},
	"bacteroidetes":   {Name: "Bacteroidetes", Type: EntityMicrobe},
	"lactobacillus":   {Name: "Lactobacillus", Type: EntityMicrobe},
	"akkermansia":     {Name: "Akkermansia", Type: EntityMicrobe},
	"prevotella":      {Name: "Prevotella", Type: EntityMicrobe},
	"yogurt":          {Name: "Yogurt", Type: EntityFood},
	"kefir":           {Name: "Kefir", Type: EntityFood},
	"kimchi":          {Name: "Kimchi", Type: EntityFood},
	"oats":            {Name: "Oats", Type: EntityFood},
	"fiber":           {Name: "Fiber", Type: EntityFood},
	"sauerkraut":      {Name: "Sauerkraut", Type: EntityFood},
}

type EntityExtractor struct {
	terms map[string]knowledgeTerm
}

func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{terms: knowledgeBase}
}

// Extract finds knowledge-base terms plus the profile's allergies and
// conditions in text. Each entity is reported once, in order of first
// occurrence.
func (e *EntityExtractor) Extract(text string, profile entity.UserProfile) []entity.Entity {
	clean := " " + cleanText(text) + " "

	type hit struct {
		pos int
		ent entity.Entity
	}
	var hits []hit
	seen := make(map[string]bool)

	add := func(term string, ent entity.Entity) {
		key := ent.Type + ":" + strings.ToLower(ent.Name)
		if seen[key] {
			return
		}
		pos := wordIndex(clean, term)
		if plural := wordIndex(clean, term+"s"); plural >= 0 && (pos < 0 || plural < pos) {
			pos = plural
		}
		if pos < 0 {
			return
		}
		seen[key] = true
		hits = append(hits, hit{pos: pos, ent: ent})
	}

	for term, kt := range e.terms {
		add(term, entity.Entity{Name: kt.Name, Type: kt.Type})
	}
	for _, allergy := range profile.Allergies {
		if term := cleanText(allergy); term != "" {
			add(term, entity.Entity{Name: allergy, Type: EntityAllergen})
		}
	}
	for _, condition := range profile.Conditions {
		if term := cleanText(condition); term != "" {
			add(term, entity.Entity{Name: condition, Type: EntityCondition})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].ent.Name < hits[j].ent.Name
	})

	entities := make([]entity.Entity, 0, len(hits))
	for _, h := range hits {
		entities = append(entities, h.ent)
	}
	return entities
}

// wordIndex expects padded to start and end with a space.
func wordIndex(padded, term string) int {
	return strings.Index(padded, " "+term+" ")
}
