package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/esportehub/equipment-reservation/internal/errs"
	"github.com/esportehub/equipment-reservation/internal/model"
)

type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	GetEquipment(ctx context.Context, id int) (model.Equipment, error)
	ListEquipment(ctx context.Context) ([]model.Equipment, error)

	GetReservation(ctx context.Context, id int) (model.Reservation, error)
	// GetReservationForUpdate locks the reservation row so status
	// eligibility checks cannot race a concurrent writer. Must be called
	// inside WithTx, before LockEquipment.
	GetReservationForUpdate(ctx context.Context, id int) (model.Reservation, error)
	ListReservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	ListActiveReservations(ctx context.Context, equipmentID int) ([]model.Reservation, error)
	ActiveAmounts(ctx context.Context) (map[int]int, error)

	CreateReservation(ctx context.Context, r model.Reservation) (model.Reservation, error)
	UpdateReservation(ctx context.Context, id int, upd model.ReservationUpdate) error
	DeleteReservation(ctx context.Context, id int) error

	// WithTx runs fn inside a transaction carried by the context; nested
	// calls reuse the outer transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockEquipment takes the per-equipment row lock that serializes
	// concurrent capacity checks. Must be called inside WithTx.
	LockEquipment(ctx context.Context, id int) (model.Equipment, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName        = `users`
	equipmentsTableName   = `equipments`
	reservationsTableName = `reservations`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var reservationColumns = []string{
	"id", "reservation_uid", "username", "user_id", "equipment_id",
	"withdrawal_at", "return_at", "amount", "status",
}

func activeStatusStrings() []string {
	ss := make([]string, 0, len(model.ActiveStatuses))
	for _, s := range model.ActiveStatuses {
		ss = append(ss, string(s))
	}
	return ss
}

func (r *repository) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	query, args, err := qb.Select("id", "username", "name", "email", "role").
		From(usersTableName).
		Where(sq.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := sqlx.GetContext(ctx, r.ext(ctx), &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (r *repository) GetEquipment(ctx context.Context, id int) (model.Equipment, error) {
	query, args, err := qb.Select("id", "name", "image_url", "total_units").
		From(equipmentsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Equipment{}, err
	}
	var eq model.Equipment
	if err := sqlx.GetContext(ctx, r.ext(ctx), &eq, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Equipment{}, errs.ErrNotFound
		}
		return model.Equipment{}, err
	}
	return eq, nil
}

func (r *repository) ListEquipment(ctx context.Context) ([]model.Equipment, error) {
	query, args, err := qb.Select("id", "name", "image_url", "total_units").
		From(equipmentsTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Equipment
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) GetReservation(ctx context.Context, id int) (model.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var res model.Reservation
	if err := sqlx.GetContext(ctx, r.ext(ctx), &res, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	return res, nil
}

func (r *repository) GetReservationForUpdate(ctx context.Context, id int) (model.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"id": id}).
		Suffix("for update").
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var res model.Reservation
	if err := sqlx.GetContext(ctx, r.ext(ctx), &res, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	return res, nil
}

func (r *repository) ListReservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	q := qb.Select(reservationColumns...).
		From(reservationsTableName).
		OrderBy("withdrawal_at")

	if filter.Username != "" {
		q = q.Where(sq.Eq{"username": filter.Username})
	}
	if filter.EquipmentID != 0 {
		q = q.Where(sq.Eq{"equipment_id": filter.EquipmentID})
	}
	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": string(filter.Status)})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Reservation
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListActiveReservations(ctx context.Context, equipmentID int) ([]model.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"equipment_id": equipmentID}).
		Where(sq.Eq{"status": activeStatusStrings()}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Reservation
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ActiveAmounts(ctx context.Context) (map[int]int, error) {
	query, args, err := qb.Select("equipment_id", "coalesce(sum(amount), 0) as committed").
		From(reservationsTableName).
		Where(sq.Eq{"status": activeStatusStrings()}).
		GroupBy("equipment_id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.ext(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	committed := make(map[int]int)
	for rows.Next() {
		var equipmentID, sum int
		if err := rows.Scan(&equipmentID, &sum); err != nil {
			return nil, err
		}
		committed[equipmentID] = sum
	}
	return committed, rows.Err()
}

func (r *repository) CreateReservation(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	query, args, err := qb.Insert(reservationsTableName).
		Columns("reservation_uid", "username", "user_id", "equipment_id",
			"withdrawal_at", "return_at", "amount", "status").
		Values(res.ReservationUID, res.Username, res.UserID, res.EquipmentID,
			res.WithdrawalAt, res.ReturnAt, res.Amount, string(res.Status)).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var created model.Reservation
	if err := sqlx.GetContext(ctx, r.ext(ctx), &created, query, args...); err != nil {
		r.log.Error("CreateReservation", zap.String("q", query), zap.Any("args", args))
		return model.Reservation{}, err
	}
	return created, nil
}

func (r *repository) UpdateReservation(ctx context.Context, id int, upd model.ReservationUpdate) error {
	q := qb.Update(reservationsTableName).Where(sq.Eq{"id": id})
	if upd.Period != nil {
		q = q.Set("withdrawal_at", upd.Period.WithdrawalAt).
			Set("return_at", upd.Period.ReturnAt)
	}
	if upd.Amount != nil {
		q = q.Set("amount", *upd.Amount)
	}
	if upd.Status != nil {
		q = q.Set("status", string(*upd.Status))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	result, err := r.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) DeleteReservation(ctx context.Context, id int) error {
	query, args, err := qb.Delete(reservationsTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := r.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *repository) LockEquipment(ctx context.Context, id int) (model.Equipment, error) {
	query, args, err := qb.Select("id", "name", "image_url", "total_units").
		From(equipmentsTableName).
		Where(sq.Eq{"id": id}).
		Suffix("for update").
		ToSql()
	if err != nil {
		return model.Equipment{}, err
	}
	var eq model.Equipment
	if err := sqlx.GetContext(ctx, r.ext(ctx), &eq, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Equipment{}, errs.ErrNotFound
		}
		return model.Equipment{}, err
	}
	return eq, nil
}
