package services

import (
	"fmt"

	"github.com/greenloophq/greenloop/db"
	"github.com/greenloophq/greenloop/models"
)

type NotificationService interface {
	CreateNotification(userID uint, message, notificationType string) (*models.Notification, error)
	GetUnreadNotifications(userID uint) ([]models.Notification, error)
	MarkNotificationAsRead(id uint) error
}

type notificationService struct {
	notificationRepo db.NotificationRepository
}

func NewNotificationService(notificationRepo db.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) CreateNotification(userID uint, message, notificationType string) (*models.Notification, error) {
	notification, err := s.notificationRepo.CreateNotification(userID, message, notificationType)
	if err != nil {
		return nil, fmt.Errorf("error creating notification: %w", err)
	}
	return notification, nil
}

func (s *notificationService) GetUnreadNotifications(userID uint) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.GetUnreadNotifications(userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching unread notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkNotificationAsRead(id uint) error {
	return s.notificationRepo.MarkNotificationAsRead(id)
}
