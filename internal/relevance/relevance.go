package relevance

import (
	"math"
	"time"
)

// Fonctions de scoring pures utilisées pour classer les résultats du fil
// et de la recherche. Les scores sont relatifs : seul l'ordre compte,
// aucune échelle absolue n'est garantie.

// freshnessHalfLife : âge auquel le score de fraîcheur tombe à 0.5
const freshnessHalfLife = 7 * 24 * time.Hour

// InteractionScore pondère les interactions par leur coût d'engagement :
// like=3, commentaire=5, partage=7
func InteractionScore(likes, comments, shares int) float64 {
	return float64(likes*3+comments*5+shares*7) / 10
}

// CompletenessScore récompense la complétude d'une observation.
// Les bonus (0.3 + 0.4 + 0.3) somment à 1.0 au maximum.
func CompletenessScore(hasScientificName, hasImages, hasObservation bool) float64 {
	score := 0.0
	if hasScientificName {
		score += 0.3
	}
	if hasImages {
		score += 0.4
	}
	if hasObservation {
		score += 0.3
	}
	return score
}

// FreshnessScore décroît exponentiellement avec l'âge du contenu,
// demi-vie de 7 jours. Les timestamps futurs valent 1.
func FreshnessScore(createdAt int64, now time.Time) float64 {
	age := now.Sub(time.UnixMilli(createdAt))
	if age <= 0 {
		return 1.0
	}
	return math.Exp2(-float64(age) / float64(freshnessHalfLife))
}

// Relevance : moyenne arithmétique interaction / fraîcheur / complétude
func Relevance(likes, comments, shares int, createdAt int64, hasScientificName, hasImages, hasObservation bool, now time.Time) float64 {
	interaction := InteractionScore(likes, comments, shares)
	freshness := FreshnessScore(createdAt, now)
	completeness := CompletenessScore(hasScientificName, hasImages, hasObservation)
	return (interaction + freshness + completeness) / 3
}

// UserRelevance classe les profils : volume d'observations, audience,
// réseau suivi, et bonus fixe de vérification
func UserRelevance(totalRecords, followers, following int, verified bool) float64 {
	score := float64(totalRecords)*0.1 + float64(followers)*0.05 + float64(following)*0.02
	if verified {
		score += 2.0
	}
	return score
}
