// File: database/repository/notification/interface.go
package notificationRepo

import (
	"context"

	"opsdash/config"
	"opsdash/database"
	"opsdash/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationRepository stores the user-visible notifications of board sessions.
type NotificationRepository interface {
	Create(ctx context.Context, n models.Notification) (string, error)
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.Notification, error)
	MarkSessionRead(ctx context.Context, sessionID string) (int64, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

type mongoNotificationRepo struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepo constructs a MongoDB NotificationRepository.
func NewMongoNotificationRepo() NotificationRepository {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &mongoNotificationRepo{
		coll: db.Collection("notifications"),
	}
}
