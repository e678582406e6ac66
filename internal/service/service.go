package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/esportehub/equipment-reservation/internal/clock"
	"github.com/esportehub/equipment-reservation/internal/errs"
	"github.com/esportehub/equipment-reservation/internal/events"
	"github.com/esportehub/equipment-reservation/internal/model"
	"github.com/esportehub/equipment-reservation/internal/repository"
)

// Service orchestrates the reservation engine: period validation, the
// capacity ledger, the lifecycle state machine and persistence. It holds no
// locks of its own; write paths run inside a repository transaction that
// serializes writers per equipment.
type Service struct {
	log  *zap.Logger
	repo repository.Repository
	clk  clock.Clock
	pub  *events.Publisher
}

func NewService(repo repository.Repository, clk clock.Clock, pub *events.Publisher, log *zap.Logger) *Service {
	return &Service{
		log:  log,
		repo: repo,
		clk:  clk,
		pub:  pub,
	}
}

func (s *Service) Create(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return model.Reservation{}, errors.WithMessage(err, "requester")
	}
	eq, err := s.repo.GetEquipment(ctx, req.EquipmentID)
	if err != nil {
		return model.Reservation{}, errors.WithMessage(err, "equipment")
	}

	if req.Amount <= 0 || req.Amount > eq.TotalUnits {
		return model.Reservation{}, errors.Wrapf(errs.ErrInvalidAmount,
			"amount %d, total units %d", req.Amount, eq.TotalUnits)
	}

	period, err := model.NewPeriod(req.WithdrawalAt, req.ReturnAt, s.clk.Now())
	if err != nil {
		return model.Reservation{}, err
	}

	status := req.Status
	if status == "" {
		status = model.StatusScheduled
	}
	if status != model.StatusScheduled && status != model.StatusPending {
		return model.Reservation{}, errors.Wrapf(errs.ErrIllegalTransition, "initial status %s", status)
	}

	var created model.Reservation
	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.repo.LockEquipment(ctx, eq.ID)
		if err != nil {
			return err
		}
		active, err := s.repo.ListActiveReservations(ctx, locked.ID)
		if err != nil {
			return err
		}
		if err := CheckOverlapCapacity(locked, period, req.Amount, 0, active); err != nil {
			return err
		}

		created, err = s.repo.CreateReservation(ctx, model.Reservation{
			ReservationUID: uuid.NewString(),
			Username:       user.Username,
			UserID:         user.ID,
			EquipmentID:    locked.ID,
			Period:         period,
			Amount:         req.Amount,
			Status:         status,
		})
		return err
	})
	if err != nil {
		if repository.IsWriteConflict(err) {
			// A concurrent writer won the equipment; the window no longer fits.
			return model.Reservation{}, errors.Wrap(errs.ErrCapacityExceeded, "concurrent reservation")
		}
		return model.Reservation{}, err
	}

	s.log.Info("reservation created",
		zap.String("uid", created.ReservationUID),
		zap.Int("equipment", created.EquipmentID),
		zap.Int("amount", created.Amount))
	s.pub.Publish(ctx, events.ReservationEvent{
		Type:           events.TypeCreated,
		ReservationUID: created.ReservationUID,
		Username:       created.Username,
		EquipmentID:    created.EquipmentID,
		Amount:         created.Amount,
		Status:         created.Status,
		OccurredAt:     s.clk.Now(),
	})
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int) (model.Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *Service) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx, filter)
}

// Update applies a partial change to a reservation. Every requested field
// change is validated before any of them is persisted; a RETURNED
// reservation rejects all of it up front.
func (s *Service) Update(ctx context.Context, id int, patch model.UpdateReservationRequest) (model.Reservation, error) {
	var updated model.Reservation
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		// Lock the reservation row first so the status checked below is the
		// committed one, not a read a concurrent writer is about to outdate.
		res, err := s.repo.GetReservationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res.Status.Terminal() {
			return errors.Wrapf(errs.ErrReturnedImmutable, "reservation %d", id)
		}
		if patch.Empty() {
			updated = res
			return nil
		}

		eq, err := s.repo.LockEquipment(ctx, res.EquipmentID)
		if err != nil {
			return err
		}

		upd := model.ReservationUpdate{}
		effPeriod, effAmount := res.Period, res.Amount

		if patch.WithdrawalAt != nil || patch.ReturnAt != nil {
			withdrawalAt, returnAt := res.WithdrawalAt, res.ReturnAt
			if patch.WithdrawalAt != nil {
				withdrawalAt = *patch.WithdrawalAt
			}
			if patch.ReturnAt != nil {
				returnAt = *patch.ReturnAt
			}
			period, err := model.NewPeriod(withdrawalAt, returnAt, s.clk.Now())
			if err != nil {
				return err
			}
			effPeriod = period
			upd.Period = &period
		}

		if patch.Amount != nil {
			if *patch.Amount <= 0 || *patch.Amount > eq.TotalUnits {
				return errors.Wrapf(errs.ErrInvalidAmount,
					"amount %d, total units %d", *patch.Amount, eq.TotalUnits)
			}
			effAmount = *patch.Amount
			upd.Amount = patch.Amount
		}

		if upd.Period != nil || upd.Amount != nil {
			active, err := s.repo.ListActiveReservations(ctx, eq.ID)
			if err != nil {
				return err
			}
			if err := CheckOverlapCapacity(eq, effPeriod, effAmount, res.ID, active); err != nil {
				return err
			}
		}

		if patch.Status != nil {
			if err := res.Status.CanTransitionTo(*patch.Status); err != nil {
				return err
			}
			upd.Status = patch.Status
		}

		if err := s.repo.UpdateReservation(ctx, id, upd); err != nil {
			return err
		}

		updated = res
		updated.Period = effPeriod
		updated.Amount = effAmount
		if upd.Status != nil {
			updated.Status = *upd.Status
		}
		return nil
	})
	if err != nil {
		if repository.IsWriteConflict(err) {
			return model.Reservation{}, errors.Wrap(errs.ErrCapacityExceeded, "concurrent reservation")
		}
		return model.Reservation{}, err
	}

	if patch.Status != nil {
		s.pub.Publish(ctx, events.ReservationEvent{
			Type:           events.TypeStatusChanged,
			ReservationUID: updated.ReservationUID,
			Username:       updated.Username,
			EquipmentID:    updated.EquipmentID,
			Amount:         updated.Amount,
			Status:         updated.Status,
			OccurredAt:     s.clk.Now(),
		})
	}
	return updated, nil
}

// Delete removes a reservation unless the equipment is physically out.
// RETURNED reservations stay deletable, as the original rules have it.
// The status check and the delete share one transaction under the row lock,
// so a concurrent move to IN_PROGRESS cannot slip between them.
func (s *Service) Delete(ctx context.Context, id int) error {
	var res model.Reservation
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.repo.GetReservationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res.Status == model.StatusInProgress {
			return errors.Wrapf(errs.ErrDeleteInProgress, "reservation %d", id)
		}
		return s.repo.DeleteReservation(ctx, id)
	})
	if err != nil {
		return err
	}

	s.pub.Publish(ctx, events.ReservationEvent{
		Type:           events.TypeDeleted,
		ReservationUID: res.ReservationUID,
		Username:       res.Username,
		EquipmentID:    res.EquipmentID,
		Amount:         res.Amount,
		Status:         res.Status,
		OccurredAt:     s.clk.Now(),
	})
	return nil
}

// Availability is the aggregate, time-blind figure surfaced to users
// browsing equipment. It may be momentarily stale under concurrent writes.
func (s *Service) Availability(ctx context.Context, equipmentID int) (int, error) {
	eq, err := s.repo.GetEquipment(ctx, equipmentID)
	if err != nil {
		return 0, err
	}
	active, err := s.repo.ListActiveReservations(ctx, equipmentID)
	if err != nil {
		return 0, err
	}
	return AvailableUnits(eq, active), nil
}

// CheckFit is the pre-flight, time-windowed check: would this period and
// amount be granted right now. It writes nothing and takes no lock, so a
// later Create can still fail.
func (s *Service) CheckFit(ctx context.Context, equipmentID int, req model.CheckFitRequest) error {
	eq, err := s.repo.GetEquipment(ctx, equipmentID)
	if err != nil {
		return err
	}
	if req.Amount <= 0 || req.Amount > eq.TotalUnits {
		return errors.Wrapf(errs.ErrInvalidAmount, "amount %d, total units %d", req.Amount, eq.TotalUnits)
	}
	period, err := model.NewPeriod(req.WithdrawalAt, req.ReturnAt, s.clk.Now())
	if err != nil {
		return err
	}
	active, err := s.repo.ListActiveReservations(ctx, equipmentID)
	if err != nil {
		return err
	}
	return CheckOverlapCapacity(eq, period, req.Amount, 0, active)
}

func (s *Service) GetEquipment(ctx context.Context, id int) (model.EquipmentView, error) {
	eq, err := s.repo.GetEquipment(ctx, id)
	if err != nil {
		return model.EquipmentView{}, err
	}
	active, err := s.repo.ListActiveReservations(ctx, id)
	if err != nil {
		return model.EquipmentView{}, err
	}
	return model.EquipmentView{Equipment: eq, AvailableUnits: AvailableUnits(eq, active)}, nil
}

func (s *Service) ListEquipment(ctx context.Context) ([]model.EquipmentView, error) {
	items, err := s.repo.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	committed, err := s.repo.ActiveAmounts(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]model.EquipmentView, 0, len(items))
	for _, eq := range items {
		available := eq.TotalUnits - committed[eq.ID]
		if available < 0 {
			available = 0
		}
		views = append(views, model.EquipmentView{Equipment: eq, AvailableUnits: available})
	}
	return views, nil
}
