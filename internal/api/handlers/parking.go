package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langchou/citygazer/internal/view"
)

// GetParking 获取停车快照及投影
func (h *Handler) GetParking(c *gin.Context) {
	snap := h.parking.Snapshot()
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Parking data not ready"})
		return
	}

	zones := make([]gin.H, 0, len(snap.Zones))
	for _, z := range snap.Zones {
		status := view.OccupancyStatusFor(z.OccupancyRate)
		zones = append(zones, gin.H{
			"zone":       z,
			"status":     status,
			"reservable": z.Available > 0,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": snap,
		"projections": gin.H{
			"totals":       view.SumParkingTotals(snap.Zones),
			"zone_cards":   zones,
			"zone_markers": view.ZoneMarkers(snap.Zones),
		},
	})
}
