package db

import (
	"github.com/greenloophq/greenloop/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateNotification(userID uint, message, notificationType string) (*models.Notification, error)
	GetUnreadNotifications(userID uint) ([]models.Notification, error)
	MarkNotificationAsRead(id uint) error
}

type notificationRepo struct {
	DB *gorm.DB
}

func NewNotificationRepo(db *GormDB) NotificationRepository {
	return &notificationRepo{db.DB}
}

func (r *notificationRepo) CreateNotification(userID uint, message, notificationType string) (*models.Notification, error) {
	notification := models.Notification{
		UserID:  userID,
		Message: message,
		Type:    notificationType,
	}
	if err := r.DB.Create(&notification).Error; err != nil {
		return nil, errors.Wrap(err, "creating notification")
	}
	return &notification, nil
}

func (r *notificationRepo) GetUnreadNotifications(userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.DB.Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, errors.Wrap(err, "fetching unread notifications")
	}
	return notifications, nil
}

// MarkNotificationAsRead is idempotent: marking an already-read
// notification is a no-op, not an error.
func (r *notificationRepo) MarkNotificationAsRead(id uint) error {
	return r.DB.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}
