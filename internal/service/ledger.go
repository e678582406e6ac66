package service

import (
	"github.com/pkg/errors"

	"github.com/esportehub/equipment-reservation/internal/errs"
	"github.com/esportehub/equipment-reservation/internal/model"
)

// AvailableUnits is the aggregate inventory view: total units minus every
// unit committed by a non-terminal reservation, regardless of when those
// reservations occur. This is the figure shown while browsing equipment;
// whether a concrete window fits is CheckOverlapCapacity's question.
func AvailableUnits(eq model.Equipment, active []model.Reservation) int {
	committed := 0
	for _, r := range active {
		if r.EquipmentID != eq.ID || !r.Status.Active() {
			continue
		}
		committed += r.Amount
	}
	if committed >= eq.TotalUnits {
		return 0
	}
	return eq.TotalUnits - committed
}

// CheckOverlapCapacity decides whether granting amount units over candidate
// would over-allocate eq at any overlapping instant. excludeID skips one
// reservation, used when revalidating an update against itself.
func CheckOverlapCapacity(eq model.Equipment, candidate model.Period, amount int, excludeID int, active []model.Reservation) error {
	overlapping := 0
	for _, r := range active {
		if r.EquipmentID != eq.ID || !r.Status.Active() {
			continue
		}
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if !r.Period.Overlaps(candidate) {
			continue
		}
		overlapping += r.Amount
	}
	if overlapping+amount > eq.TotalUnits {
		return errors.Wrapf(errs.ErrCapacityExceeded,
			"requested %d, %d of %d already committed in window", amount, overlapping, eq.TotalUnits)
	}
	return nil
}
