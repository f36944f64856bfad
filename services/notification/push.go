package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// FCMPusher sends topic messages through Firebase Cloud Messaging.
type FCMPusher struct {
	Client *messaging.Client
}

func (p *FCMPusher) PushTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	if p.Client == nil {
		return fmt.Errorf("PushTopic: messaging client not initialized")
	}
	msg := &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	if _, err := p.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("PushTopic: failed to send FCM message: %w", err)
	}
	return nil
}
