package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"swaprouter/src/database"
	"swaprouter/src/model"
)

// OrderRepository persists orders, route splits, execution results and
// submitter nonces.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a repository on the main read/write database.
func NewOrderRepository() *OrderRepository {
	logger.WithField("component", "OrderRepository").
		Info("Creating new OrderRepository with MainDB")

	return &OrderRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *OrderRepository) WithDB(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder stores the order and its routes and advances the submitter
// nonce, all in one transaction. Fails with model.ErrDuplicateOrder when the
// id is already registered.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *model.Order, routes []model.RouteSplit) error {
	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "CreateOrder",
		"order_id": order.ID,
		"routes":   len(routes),
	}).Debug("Creating new order")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Order{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return model.ErrDuplicateOrder
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for i := range routes {
			if err := tx.Create(&routes[i]).Error; err != nil {
				return err
			}
		}

		nonce := model.SubmitterNonce{Submitter: order.Submitter}
		if err := tx.Where("submitter = ?", order.Submitter).
			FirstOrCreate(&nonce).Error; err != nil {
			return err
		}
		return tx.Model(&model.SubmitterNonce{}).
			Where("submitter = ?", order.Submitter).
			Update("nonce", nonce.Nonce+1).Error
	})
	if err != nil {
		if !errors.Is(err, model.ErrDuplicateOrder) {
			logger.WithFields(map[string]interface{}{
				"repo": "OrderRepository",
				"op":   "CreateOrder",
			}).WithError(err).Error("Failed to create order")
		}
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "CreateOrder",
		"order_id": order.ID,
	}).Info("Order created successfully")

	return nil
}

// GetOrder fetches an order by id. Returns (nil, nil) if not found.
func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "GetOrder",
			"order_id": id,
		}).WithError(err).Error("Failed to fetch order")
		return nil, err
	}
	return &order, nil
}

// GetRoutes fetches the order's route splits in insertion order.
func (r *OrderRepository) GetRoutes(ctx context.Context, id string) ([]model.RouteSplit, error) {
	var routes []model.RouteSplit
	err := r.db.WithContext(ctx).
		Where("order_id = ?", id).
		Order("id ASC").
		Find(&routes).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "GetRoutes",
			"order_id": id,
		}).WithError(err).Error("Failed to fetch routes")
		return nil, err
	}
	return routes, nil
}

// CurrentNonce returns the submitter's nonce, zero when unseen.
func (r *OrderRepository) CurrentNonce(ctx context.Context, submitter string) (uint64, error) {
	var nonce model.SubmitterNonce
	err := r.db.WithContext(ctx).Where("submitter = ?", submitter).First(&nonce).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return nonce.Nonce, nil
}

// MarkExecuted flips the order and all of its routes to executed, storing
// each route's realized output (aligned with insertion order).
func (r *OrderRepository) MarkExecuted(ctx context.Context, id string, executedAt time.Time, realizedOut []*model.BigInt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":      model.OrderStatusExecuted,
			"executed":    true,
			"executed_at": executedAt,
		}).Error; err != nil {
			return err
		}

		var routes []model.RouteSplit
		if err := tx.Where("order_id = ?", id).Order("id ASC").Find(&routes).Error; err != nil {
			return err
		}
		for i := range routes {
			update := map[string]interface{}{"executed": true}
			if i < len(realizedOut) {
				update["realized_out"] = realizedOut[i]
			}
			if err := tx.Model(&model.RouteSplit{}).
				Where("id = ?", routes[i].ID).
				Updates(update).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkRefunded flips the order to refunded and records the refund amount.
func (r *OrderRepository) MarkRefunded(ctx context.Context, id string, refundAmount *model.BigInt) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        model.OrderStatusRefunded,
		"refunded":      true,
		"refund_amount": refundAmount,
	}).Error
}

// SaveResult stores the order's terminal execution result.
func (r *OrderRepository) SaveResult(ctx context.Context, result *model.ExecutionResult) error {
	err := r.db.WithContext(ctx).Create(result).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "SaveResult",
			"order_id": result.OrderID,
		}).WithError(err).Error("Failed to save execution result")
	}
	return err
}

// GetResult fetches the execution result. Returns (nil, nil) if not found.
func (r *OrderRepository) GetResult(ctx context.Context, id string) (*model.ExecutionResult, error) {
	var result model.ExecutionResult
	err := r.db.WithContext(ctx).Where("order_id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// CountOrders returns the number of orders ever created.
func (r *OrderRepository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&count).Error
	return count, err
}
