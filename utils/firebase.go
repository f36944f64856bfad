// utils/firebase.go
package utils

import (
	"context"
	"log"

	"opsdash/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var FCMClient *messaging.Client

// FirebaseInit initializes the Firebase App and Messaging client. Without a
// credentials file push delivery stays disabled and FCMClient remains nil.
func FirebaseInit() {
	path := config.AppConfig.FirebaseCredentialsFile
	if path == "" {
		log.Println("firebase: no credentials configured, push reminders disabled")
		return
	}
	ctx := context.Background()
	opt := option.WithCredentialsFile(path)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Fatalf("firebase: error initializing app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Fatalf("firebase: error getting Messaging client: %v", err)
	}

	FCMClient = client
}
