package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/travelit/backend/internal/config"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []MailTask
	err  error
	done chan struct{}
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	m.sent = append(m.sent, MailTask{To: to, Subject: subject, Body: body})
	m.mu.Unlock()
	if m.done != nil {
		m.done <- struct{}{}
	}
	return m.err
}

func TestTaskTypeMail_Constant(t *testing.T) {
	if TaskTypeMail != "mail:send" {
		t.Errorf("TaskTypeMail = %q, expected %q", TaskTypeMail, "mail:send")
	}
}

func TestSyncQueue_IsAsync(t *testing.T) {
	q := NewSyncQueue()
	if q.IsAsync() {
		t.Error("SyncQueue.IsAsync() should return false")
	}
	if err := q.Close(); err != nil {
		t.Errorf("SyncQueue.Close() error = %v", err)
	}
}

func TestSyncQueue_NoProcessorDropsTask(t *testing.T) {
	q := NewSyncQueue()
	if err := q.Enqueue(&MailTask{To: "a@example.com"}); err != nil {
		t.Errorf("Enqueue() without processor should not error, got %v", err)
	}
}

func TestSyncQueue_DeliversThroughMailer(t *testing.T) {
	mailer := &recordingMailer{done: make(chan struct{}, 1)}
	q := NewSyncQueue()
	q.SetProcessor(MailProcessor(mailer))

	if err := q.Enqueue(&MailTask{To: "a@example.com", Subject: "hi", Body: "<p>hi</p>"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	select {
	case <-mailer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("mail was not delivered")
	}

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if len(mailer.sent) != 1 || mailer.sent[0].To != "a@example.com" {
		t.Errorf("sent = %+v", mailer.sent)
	}
}

func TestSyncQueue_DeliveryFailureIsSwallowed(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down"), done: make(chan struct{}, 1)}
	q := NewSyncQueue()
	q.SetProcessor(MailProcessor(mailer))

	if err := q.Enqueue(&MailTask{To: "a@example.com"}); err != nil {
		t.Fatalf("Enqueue() must not report delivery errors, got %v", err)
	}
	<-mailer.done
}

func TestNewTaskQueue_RedisDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	q := NewTaskQueue(cfg, LogMailer{})
	if q.IsAsync() {
		t.Error("expected sync queue when Redis is disabled")
	}
}

func TestNewWorker_RedisDisabled(t *testing.T) {
	if w := NewWorker(&config.RedisConfig{Enabled: false}); w != nil {
		t.Error("NewWorker() should return nil when Redis is disabled")
	}
}

func TestMailProcessor(t *testing.T) {
	mailer := &recordingMailer{}
	if err := MailProcessor(mailer)(context.Background(), &MailTask{To: "b@example.com", Subject: "s"}); err != nil {
		t.Fatal(err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].Subject != "s" {
		t.Errorf("sent = %+v", mailer.sent)
	}
}

func TestVerificationEmail(t *testing.T) {
	subject, body := verificationEmail("<alice>", "https://api.example/verify?token=abc&x=1", time.Hour)
	if subject == "" {
		t.Error("subject should not be empty")
	}
	if !strings.Contains(body, "60 minutes") {
		t.Error("body should mention the expiry")
	}
	if strings.Contains(body, "<alice>") || !strings.Contains(body, "&lt;alice&gt;") {
		t.Error("username must be HTML escaped")
	}
	if !strings.Contains(body, "token=abc&amp;x=1") {
		t.Error("link should be present and escaped")
	}
}

func TestNewMailer(t *testing.T) {
	if _, ok := NewMailer(&config.MailConfig{}).(LogMailer); !ok {
		t.Error("disabled mail config should yield LogMailer")
	}
	m := NewMailer(&config.MailConfig{Enabled: true, Host: "smtp.example.com", Port: 587, Username: "bot@example.com"})
	smtp, ok := m.(*SMTPMailer)
	if !ok {
		t.Fatal("enabled mail config should yield SMTPMailer")
	}
	if smtp.from != "bot@example.com" {
		t.Errorf("from = %q, expected to fall back to username", smtp.from)
	}
}
