package domain

import "time"

// OccupancySummary is the front-desk occupancy report.
type OccupancySummary struct {
	TotalRooms    int     `json:"total_rooms"`
	OccupiedRooms int     `json:"occupied_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`
	ActiveStays   int     `json:"active_stays"`
	OpenRequests  int     `json:"open_housekeeping_requests"`
}

// RevenueRow is one day of delivered room-service revenue.
type RevenueRow struct {
	Day          time.Time `json:"day"`
	Orders       int64     `json:"orders"`
	RevenueCents int64     `json:"revenue_cents"`
}
