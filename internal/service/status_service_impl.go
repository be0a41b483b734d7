package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/shopfloor/internal/domain"
	"github.com/alexanderramin/shopfloor/internal/repository"
	"github.com/shopspring/decimal"
)

// DashboardSummary is the shop floor at a glance.
type DashboardSummary struct {
	OrdersByStatus     map[domain.OrderStatus]int
	TotalOrders        int
	TotalComponents    int
	TotalBOMs          int
	LowStockComponents int
	InventoryValue     decimal.Decimal
	GeneratedAt        time.Time
}

type statusService struct {
	orders     repository.OrderRepo
	components repository.ComponentRepo
	boms       repository.BOMRepo
}

func NewStatusService(
	orders repository.OrderRepo,
	components repository.ComponentRepo,
	boms repository.BOMRepo,
) StatusService {
	return &statusService{
		orders:     orders,
		components: components,
		boms:       boms,
	}
}

func (s *statusService) Summary(ctx context.Context) (*DashboardSummary, error) {
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting orders: %w", err)
	}
	components, err := s.components.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading components: %w", err)
	}
	boms, err := s.boms.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting boms: %w", err)
	}

	summary := &DashboardSummary{
		OrdersByStatus:  byStatus,
		TotalComponents: len(components),
		TotalBOMs:       boms,
		InventoryValue:  decimal.Zero,
		GeneratedAt:     time.Now().UTC(),
	}
	for _, n := range byStatus {
		summary.TotalOrders += n
	}
	for _, c := range components {
		if c.IsLowStock() {
			summary.LowStockComponents++
		}
		summary.InventoryValue = summary.InventoryValue.Add(c.StockValue())
	}
	return summary, nil
}
