package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/config"
)

// ErrTokenInvalid means FCM rejected the registration token; the caller
// prunes it from the token store.
var ErrTokenInvalid = errors.New("push token invalid")

// PushSender delivers one push message to one device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

type fcmMessage struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// FCMSender posts to the FCM HTTP endpoint with the server key.
type FCMSender struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewFCMSender(cfg *config.FCMConfig, logger *zap.Logger) *FCMSender {
	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "key="+cfg.ServerKey)

	return &FCMSender{httpClient: client, logger: logger}
}

var _ PushSender = (*FCMSender)(nil)

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := fcmMessage{
		To:           token,
		Notification: fcmNotification{Title: title, Body: body},
		Data:         data,
	}

	var out fcmResponse
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(&out).
		Post("")
	if err != nil {
		return fmt.Errorf("fcm request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fcm returned status %d", resp.StatusCode())
	}

	for _, r := range out.Results {
		switch r.Error {
		case "":
			continue
		case "NotRegistered", "InvalidRegistration", "MismatchSenderId":
			return ErrTokenInvalid
		default:
			return fmt.Errorf("fcm delivery failed: %s", r.Error)
		}
	}
	return nil
}

// NopSender is used when push delivery is disabled in config.
type NopSender struct{}

func (NopSender) Send(context.Context, string, string, string, map[string]string) error {
	return nil
}
