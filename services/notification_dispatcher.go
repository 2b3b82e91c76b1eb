package services

import (
	"context"
	"log"
	"sync"
	"time"

	"fitClashAPI/internal/types/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher delivers queued notifications through the push
// provider on a small worker pool, so a slow FCM round-trip never blocks the
// request that created the notification.
type NotificationDispatcher struct {
	service      *NotificationService
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

type DispatchJob struct {
	Notification *notification.Notification
	Preferences  *notification.NotificationPreferences
}

func NewNotificationDispatcher(service *NotificationService) *NotificationDispatcher {
	dispatcher := &NotificationDispatcher{
		service:  service,
		workers:  5, // 5 workers is plenty for now
		jobQueue: make(chan *DispatchJob, 100),
		stopChan: make(chan struct{}),
	}

	dispatcher.startWorkers()

	return dispatcher
}

// SetPushProvider allows injecting the real FCM provider from main.go
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

// Enqueue hands a job to the worker pool. A full queue drops the push rather
// than blocking the caller; the notification row is already stored.
func (d *NotificationDispatcher) Enqueue(job *DispatchJob) {
	select {
	case d.jobQueue <- job:
	default:
		log.Printf("Dispatcher: queue full, dropping push for notification %s", job.Notification.ID)
	}
}

func (d *NotificationDispatcher) Stop() {
	close(d.stopChan)
	d.wg.Wait()
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notif := job.Notification
	prefs := job.Preferences

	if d.pushProvider == nil || len(prefs.DeviceTokens) == 0 {
		log.Printf("Dispatcher: skipping push for %s: Tokens=%d, ProviderSet=%v",
			notif.UserID, len(prefs.DeviceTokens), d.pushProvider != nil)
		return
	}

	if err := d.pushProvider.SendPush(ctx, prefs.DeviceTokens, notif.Title, notif.Body, notif.Data); err != nil {
		log.Printf("Dispatcher: push failed for user %s: %v", notif.UserID, err)
	}
}
