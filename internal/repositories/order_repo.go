package repositories

import (
	"parfum/internal/models"
)

// OrderRepository archives orders the backend has acknowledged. The
// spreadsheet backend owns order truth; this archive is local bookkeeping
// for the shop's own records.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
}
