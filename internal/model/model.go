package model

import (
	"time"
)

type Equipment struct {
	ID         int    `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	ImageURL   string `json:"imageUrl" db:"image_url"`
	TotalUnits int    `json:"totalUnits" db:"total_units"`
}

// EquipmentView is an Equipment row together with the aggregate availability
// figure shown while browsing; availableUnits ignores time windows.
type EquipmentView struct {
	Equipment
	AvailableUnits int `json:"availableUnits" db:"-"`
}

type User struct {
	ID       int    `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Name     string `json:"name" db:"name"`
	Email    string `json:"email" db:"email"`
	Role     string `json:"role" db:"role"`
}

// Reservation holds Amount units of one equipment for one Period.
// Equipment and requester are referenced by id only.
type Reservation struct {
	ID             int    `json:"id" db:"id"`
	ReservationUID string `json:"reservationUid" db:"reservation_uid"`
	Username       string `json:"username" db:"username"`
	UserID         int    `json:"-" db:"user_id"`
	EquipmentID    int    `json:"equipmentId" db:"equipment_id"`
	Period
	Amount int    `json:"amount" db:"amount"`
	Status Status `json:"status" db:"status"`
}

type CreateReservationRequest struct {
	EquipmentID  int       `json:"equipmentId" validate:"required,gt=0"`
	WithdrawalAt time.Time `json:"withdrawalAt" validate:"required"`
	ReturnAt     time.Time `json:"returnAt" validate:"required"`
	Amount       int       `json:"amount" validate:"required,gt=0"`
	Status       Status    `json:"status" validate:"omitempty,oneof=SCHEDULED PENDING"`
	Username     string    `json:"-" validate:"required"`
}

// UpdateReservationRequest is a patch; nil fields stay untouched. All present
// fields are validated jointly before anything is persisted.
type UpdateReservationRequest struct {
	WithdrawalAt *time.Time `json:"withdrawalAt"`
	ReturnAt     *time.Time `json:"returnAt"`
	Amount       *int       `json:"amount" validate:"omitempty,gt=0"`
	Status       *Status    `json:"status" validate:"omitempty,oneof=SCHEDULED PENDING IN_PROGRESS RETURNED"`
}

func (r UpdateReservationRequest) Empty() bool {
	return r.WithdrawalAt == nil && r.ReturnAt == nil && r.Amount == nil && r.Status == nil
}

type CheckFitRequest struct {
	WithdrawalAt time.Time `json:"withdrawalAt" validate:"required"`
	ReturnAt     time.Time `json:"returnAt" validate:"required"`
	Amount       int       `json:"amount" validate:"required,gt=0"`
}

// ReservationFilter narrows List queries; zero values mean "any".
type ReservationFilter struct {
	Username    string
	EquipmentID int
	Status      Status
}

// ReservationUpdate carries the validated field changes the repository
// applies in one statement.
type ReservationUpdate struct {
	Period *Period
	Amount *int
	Status *Status
}
