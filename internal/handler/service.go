package handler

import (
	"context"

	"github.com/esportehub/equipment-reservation/internal/model"
	"github.com/esportehub/equipment-reservation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type ReservationService interface {
	Create(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error)
	Get(ctx context.Context, id int) (model.Reservation, error)
	List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	Update(ctx context.Context, id int, patch model.UpdateReservationRequest) (model.Reservation, error)
	Delete(ctx context.Context, id int) error
	Availability(ctx context.Context, equipmentID int) (int, error)
	CheckFit(ctx context.Context, equipmentID int, req model.CheckFitRequest) error
	GetEquipment(ctx context.Context, id int) (model.EquipmentView, error)
	ListEquipment(ctx context.Context) ([]model.EquipmentView, error)
}

var _ ReservationService = (*service.Service)(nil)
