package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/queueease/events"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

type OrderMealInput struct {
	ID    uint `json:"id" binding:"required"`
	Count int  `json:"count" binding:"required,gt=0"`
	// TotalPrice dari client diabaikan, harga dihitung ulang dari menu
	TotalPrice float64 `json:"totalPrice"`
}

type PlaceOrderInput struct {
	QueueNo string           `json:"queueNo" binding:"required"`
	Meals   []OrderMealInput `json:"meals" binding:"required,min=1,dive"`
}

var validOrderStatuses = map[string]bool{
	models.OrderPending:   true,
	models.OrderPreparing: true,
	models.OrderServed:    true,
	models.OrderDelivered: true,
	models.OrderCancelled: true,
}

type OrderService struct {
	DB        *gorm.DB
	Publisher events.Publisher
	Now       func() time.Time
}

func NewOrderService(db *gorm.DB, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &OrderService{DB: db, Publisher: publisher, Now: func() time.Time { return time.Now().UTC() }}
}

// PlaceOrder -> customer memesan untuk antrian yang sudah mendapat meja
func (s *OrderService) PlaceOrder(ctx context.Context, phoneNo string, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Meals) == 0 {
		return nil, utils.BadRequest("At least one meal is required")
	}
	db := s.DB.WithContext(ctx)

	var customer models.Customer
	if err := db.Where("phone_no = ?", phoneNo).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Customer not found")
		}
		return nil, err
	}

	var queue models.Queue
	if err := db.Where("queue_no = ?", in.QueueNo).First(&queue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Queue not found")
		}
		return nil, err
	}
	if queue.CustomerID != customer.ID {
		return nil, utils.Forbidden("Queue does not belong to this customer")
	}
	if queue.Status == models.QueueCompleted {
		return nil, utils.BadRequest("Queue is already completed")
	}
	if queue.TableID == nil {
		return nil, utils.BadRequest("Queue has no table assigned yet")
	}

	order := models.Order{
		RestaurantID: queue.RestaurantID,
		QueueID:      queue.ID,
		TableID:      *queue.TableID,
		CustomerID:   customer.ID,
		Status:       models.OrderPending,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(in.Meals))
		for _, m := range in.Meals {
			if m.Count <= 0 {
				return utils.BadRequest("Meal count must be greater than 0")
			}
			ids = append(ids, m.ID)
		}

		var meals []models.Meal
		if err := tx.Where("id IN ? AND restaurant_id = ?", ids, queue.RestaurantID).Find(&meals).Error; err != nil {
			return err
		}
		byID := make(map[uint]models.Meal, len(meals))
		for _, m := range meals {
			byID[m.ID] = m
		}

		for _, item := range in.Meals {
			meal, ok := byID[item.ID]
			if !ok {
				return utils.NotFound("Meal %d not found", item.ID)
			}
			lineTotal := meal.Price * float64(item.Count)
			order.OrderMeals = append(order.OrderMeals, models.OrderMeal{
				MealID:     meal.ID,
				Quantity:   item.Count,
				TotalPrice: lineTotal,
			})
			order.TotalPrice += lineTotal
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d placed for queue %s (total=%.2f)", order.ID, queue.QueueNo, order.TotalPrice)

	placed, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderPlaced, placed, queue.QueueNo)
	return placed, nil
}

// UpdateOrderStatus -> hanya order milik restoran admin
func (s *OrderService) UpdateOrderStatus(ctx context.Context, restaurantID, orderID uint, status string) (*models.Order, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !validOrderStatuses[status] {
		return nil, utils.BadRequest("Invalid order status %q", status)
	}
	db := s.DB.WithContext(ctx)

	res := db.Model(&models.Order{}).
		Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NotFound("Order not found")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderStatusChanged, order, "")
	return order, nil
}

func (s *OrderService) ListRestaurantOrders(ctx context.Context, restaurantID uint, status string, page utils.Pagination) ([]models.Order, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Order{}).Where("restaurant_id = ?", restaurantID)
	if status != "" && !strings.EqualFold(status, "all") {
		query = query.Where("status = ?", strings.ToUpper(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.Preload("OrderMeals.Meal").Preload("Table").Preload("Customer").
		Order("created_at desc").Scopes(page.Scope).Find(&orders).Error
	return orders, total, err
}

func (s *OrderService) ListCustomerOrders(ctx context.Context, phoneNo string) ([]models.Order, error) {
	db := s.DB.WithContext(ctx)
	customerIDs := db.Model(&models.Customer{}).Select("id").Where("phone_no = ?", phoneNo)

	var orders []models.Order
	err := db.Preload("OrderMeals.Meal").Preload("Table").
		Where("customer_id IN (?)", customerIDs).
		Order("created_at desc").Find(&orders).Error
	return orders, err
}

func (s *OrderService) loadOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Preload("OrderMeals.Meal").Preload("Table").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Order not found")
		}
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order, queueNo string) {
	tableID := order.TableID
	ev := events.Event{
		Type:         eventType,
		RestaurantID: order.RestaurantID,
		QueueID:      order.QueueID,
		QueueNo:      queueNo,
		OrderID:      order.ID,
		Status:       order.Status,
		TableID:      &tableID,
		Payload:      order,
		OccurredAt:   s.Now().UTC(),
	}
	if err := s.Publisher.Publish(ctx, ev); err != nil {
		utils.ErrorLogger.WithField("order_id", order.ID).Errorf("publish %s: %v", ev.Type, err)
	}
}
