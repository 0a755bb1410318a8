// Package routing decides which order lines a fulfillment station surfaces
// and what transition acting on a line performs. The rules are pure
// functions over snapshots; every display re-runs them whenever a change
// envelope updates its local cache.
package routing

import "pos-service/internal/models"

// Visible reports whether the line is surfaced at the station: its
// (snapshot) category must be in the station's category set and its current
// status in the station's input set.
func Visible(station *models.Station, line *models.OrderLine) bool {
	return station.HandlesCategory(line.CategoryID) && station.AcceptsStatus(line.Status)
}

// VisibleLines filters the lines surfaced at the station.
func VisibleLines(station *models.Station, lines []models.OrderLine) []models.OrderLine {
	visible := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		if Visible(station, &line) {
			visible = append(visible, line)
		}
	}
	return visible
}

// NextStatus returns the single deterministic status acting on a visible
// line at the station assigns. Multiple stations may cover the same line;
// whichever operator acts first wins, and the broadcast status change
// removes the line from every station whose input set no longer matches.
func NextStatus(station *models.Station) models.OrderStatus {
	return station.OutputStatus
}

// OrderStatusAfter returns the status the parent order should carry once a
// line was set to lineStatus: the order follows only when all its lines
// agree. The second return is false when the order should stay put.
func OrderStatusAfter(lines []models.OrderLine, lineStatus models.OrderStatus) (models.OrderStatus, bool) {
	for _, line := range lines {
		if line.Status != lineStatus {
			return "", false
		}
	}
	return lineStatus, len(lines) > 0
}
