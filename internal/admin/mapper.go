package admin

import "velora-api/internal/order"

type StatsResponse struct {
	TotalUsers    int64             `json:"totalUsers"`
	TotalOrders   int64             `json:"totalOrders"`
	TotalProducts int64             `json:"totalProducts"`
	TotalRevenue  float64           `json:"totalRevenue"`
	RecentOrders  []*order.Response `json:"recentOrders"`
}

func ToStatsResponse(s *Stats) *StatsResponse {
	return &StatsResponse{
		TotalUsers:    s.TotalUsers,
		TotalOrders:   s.TotalOrders,
		TotalProducts: s.TotalProducts,
		TotalRevenue:  s.TotalRevenue.Round(2).InexactFloat64(),
		RecentOrders:  order.ToResponseList(s.RecentOrders),
	}
}
