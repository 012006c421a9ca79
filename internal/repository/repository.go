package repository

import (
	"errors"

	"roadside-assist-service/internal/model"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("concurrent update, version mismatch")
	ErrAlreadyExists = errors.New("already exists")
)

// OrderFilter: campos vacíos no filtran.
type OrderFilter struct {
	UserID string
	Status model.Status
}

func (f OrderFilter) matches(o *model.Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}
