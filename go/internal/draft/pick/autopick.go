package pick

import (
	"sort"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// SortByScore orders players by fantasy points, highest first. Ties keep their input order.
func SortByScore(players []models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].FantasyPts > players[j].FantasyPts
	})
}

// BestAvailable returns the highest-scoring player, preferring the earliest on ties.
func BestAvailable(available []models.Player) (models.Player, bool) {
	if len(available) == 0 {
		return models.Player{}, false
	}

	best := available[0]
	for _, p := range available[1:] {
		if p.FantasyPts > best.FantasyPts {
			best = p
		}
	}
	return best, true
}
