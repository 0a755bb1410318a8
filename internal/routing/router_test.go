package routing

import (
	"testing"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func drinksStation(output models.OrderStatus) *models.Station {
	return &models.Station{
		ID:            "st-" + string(output),
		Name:          "Drinks",
		CategoryIDs:   []string{"drinks"},
		InputStatuses: []string{string(models.StatusOrdered)},
		OutputStatus:  output,
	}
}

func TestVisible(t *testing.T) {
	station := drinksStation(models.StatusReady)

	line := models.OrderLine{
		ID:         "line-1",
		CategoryID: "drinks",
		Status:     models.StatusOrdered,
	}
	assert.True(t, Visible(station, &line))

	// acting moved it out of the station's input set
	line.Status = models.StatusReady
	assert.False(t, Visible(station, &line))

	other := line
	other.CategoryID = "grill"
	other.Status = models.StatusOrdered
	assert.False(t, Visible(station, &other))
}

func TestVisibleLines(t *testing.T) {
	station := drinksStation(models.StatusReady)

	lines := []models.OrderLine{
		{ID: "a", CategoryID: "drinks", Status: models.StatusOrdered},
		{ID: "b", CategoryID: "drinks", Status: models.StatusReady},
		{ID: "c", CategoryID: "grill", Status: models.StatusOrdered},
		{ID: "d", CategoryID: "drinks", Status: models.StatusOrdered},
	}

	visible := VisibleLines(station, lines)
	assert.Len(t, visible, 2)
	assert.Equal(t, "a", visible[0].ID)
	assert.Equal(t, "d", visible[1].ID)
}

// Two stations with overlapping coverage: after either one acts on a line,
// the line disappears from both stations' visible sets.
func TestOverlappingStationsFirstActorWins(t *testing.T) {
	ready := drinksStation(models.StatusReady)
	cancel := drinksStation(models.StatusCancelled)

	line := models.OrderLine{ID: "line-1", CategoryID: "drinks", Status: models.StatusOrdered}
	assert.True(t, Visible(ready, &line))
	assert.True(t, Visible(cancel, &line))

	line.Status = NextStatus(ready)
	assert.Equal(t, models.StatusReady, line.Status)
	assert.False(t, Visible(ready, &line))
	assert.False(t, Visible(cancel, &line))
}

func TestOrderStatusAfter(t *testing.T) {
	lines := []models.OrderLine{
		{ID: "a", Status: models.StatusReady},
		{ID: "b", Status: models.StatusOrdered},
	}

	_, agree := OrderStatusAfter(lines, models.StatusReady)
	assert.False(t, agree)

	lines[1].Status = models.StatusReady
	status, agree := OrderStatusAfter(lines, models.StatusReady)
	assert.True(t, agree)
	assert.Equal(t, models.StatusReady, status)

	_, agree = OrderStatusAfter(nil, models.StatusReady)
	assert.False(t, agree)
}
