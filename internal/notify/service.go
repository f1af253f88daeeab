package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mrJTY/bookit/internal/logger"
	"github.com/mrJTY/bookit/internal/metrics"
)

const (
	queueKey  = "notifications"
	failedKey = "notifications:failed"

	maxTries = 3
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service queues booking notifications in redis and delivers them over SMTP
// from a background worker. Delivery failures never propagate to the booking
// paths that enqueue them.
type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Send(ctx context.Context, to, name, notificationType, subject, body string) error {
	job := Job{
		To:      to,
		Name:    name,
		Type:    notificationType,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification to %s: %v", to, err)
		return err
	}

	metrics.NotificationQueueLength.Inc()
	logger.Infof("Notification queued: %s to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}
	metrics.NotificationQueueLength.Dec()

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send notification to %s: %v", job.To, err)

		if job.Tries < maxTries {
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			metrics.NotificationQueueLength.Inc()
		} else {
			metrics.RecordNotification(job.Type, "failed")
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordNotification(job.Type, "sent")
	logger.Infof("Notification sent to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, data)
	logger.Errorf("Notification moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendBookingConfirmation(ctx context.Context, email, name, listingName string, start, end time.Time) error {
	subject := "Booking confirmed - " + listingName
	body := fmt.Sprintf(`Hi %s,

Your booking is confirmed!

Listing: %s
From: %s
To: %s

- Bookit`, name, listingName, start.Format("Jan 2, 2006 at 3:04 PM"), end.Format("Jan 2, 2006 at 3:04 PM"))

	return s.Send(ctx, email, name, "booking_confirmed", subject, body)
}

func (s *Service) SendBookingRescheduled(ctx context.Context, email, name, listingName string, start, end time.Time) error {
	subject := "Booking rescheduled - " + listingName
	body := fmt.Sprintf(`Hi %s,

Your booking has been moved to a new time:

Listing: %s
From: %s
To: %s

- Bookit`, name, listingName, start.Format("Jan 2, 2006 at 3:04 PM"), end.Format("Jan 2, 2006 at 3:04 PM"))

	return s.Send(ctx, email, name, "booking_rescheduled", subject, body)
}

func (s *Service) SendBookingCancellation(ctx context.Context, email, name, listingName string, start time.Time) error {
	subject := "Booking cancelled - " + listingName
	body := fmt.Sprintf(`Hi %s,

Your booking has been cancelled:

Listing: %s
Was scheduled for: %s

- Bookit`, name, listingName, start.Format("Jan 2, 2006 at 3:04 PM"))

	return s.Send(ctx, email, name, "booking_cancelled", subject, body)
}
