package usecase

import (
	"context"

	"safeguard/internal/domain/entity"
)

// AlertQuery restricts alerts to those overlapping a circle when Near is set.
type AlertQuery struct {
	Near     bool
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// AlertList is the aggregated feed. Degraded is set when a live source failed
// and only part of the data is being served.
type AlertList struct {
	Alerts   []entity.HazardAlert
	Degraded bool
}

// AlertUsecase aggregates hazard alerts from every source.
type AlertUsecase interface {
	ListAlerts(ctx context.Context, query AlertQuery) (*AlertList, error)
}
