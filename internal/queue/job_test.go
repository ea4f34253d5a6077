package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

type samplePayload struct {
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`
}

func TestNewJob(t *testing.T) {
	t.Parallel()

	job, err := NewJob(JobTypeRequestLog, samplePayload{Endpoint: "users", Method: "GET"})
	if err != nil {
		t.Fatalf("NewJob() error = %v", err)
	}

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeRequestLog {
		t.Errorf("Expected job type to be %s, got %s", JobTypeRequestLog, job.Type)
	}
	if job.RetryCount != 0 {
		t.Errorf("Expected retry count to be 0, got %d", job.RetryCount)
	}
	if job.MaxRetries != 3 {
		t.Errorf("Expected max retries to be 3, got %d", job.MaxRetries)
	}

	var got samplePayload
	if err := job.DecodePayload(&got); err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if got.Endpoint != "users" || got.Method != "GET" {
		t.Errorf("DecodePayload() = %+v", got)
	}
}

func TestNewJob_UnencodablePayload(t *testing.T) {
	t.Parallel()

	if _, err := NewJob(JobTypeRequestLog, make(chan int)); err == nil {
		t.Error("expected error for unencodable payload")
	}
}

func TestJob_DecodePayload_Empty(t *testing.T) {
	t.Parallel()

	job := &Job{ID: uuid.New(), Type: JobTypeRequestLog}
	var v samplePayload
	if err := job.DecodePayload(&v); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name string
		job  *Job
		want bool
	}{
		{name: "no time constraints", job: &Job{}, want: true},
		{name: "not before in past", job: &Job{NotBefore: timePtr(now.Add(-time.Hour))}, want: true},
		{name: "not before in future", job: &Job{NotBefore: timePtr(now.Add(time.Hour))}, want: false},
		{name: "not after in future", job: &Job{NotAfter: timePtr(now.Add(time.Hour))}, want: true},
		{name: "not after in past", job: &Job{NotAfter: timePtr(now.Add(-time.Hour))}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_Retry(t *testing.T) {
	t.Parallel()

	job := &Job{MaxRetries: 2}
	if !job.CanRetry() {
		t.Fatal("fresh job should be retryable")
	}
	job.IncrementRetry()
	job.IncrementRetry()
	if job.CanRetry() {
		t.Error("job should not be retryable after MaxRetries attempts")
	}
}

func TestBuildPublishing(t *testing.T) {
	t.Parallel()

	job, err := NewJob(JobTypeRequestLog, samplePayload{Endpoint: "user"})
	if err != nil {
		t.Fatalf("NewJob() error = %v", err)
	}
	job.NotAfter = timePtr(time.Now().Add(time.Minute))

	p, err := buildPublishing(job)
	if err != nil {
		t.Fatalf("buildPublishing() error = %v", err)
	}
	if p.MessageId != job.ID.String() {
		t.Errorf("MessageId = %q, want %q", p.MessageId, job.ID)
	}
	if p.Type != string(JobTypeRequestLog) {
		t.Errorf("Type = %q", p.Type)
	}
	if p.Expiration == "" {
		t.Error("expected expiration to be set from NotAfter")
	}

	var decoded Job
	if err := json.Unmarshal(p.Body, &decoded); err != nil {
		t.Fatalf("body is not a job: %v", err)
	}
	if decoded.ID != job.ID {
		t.Errorf("decoded ID = %s, want %s", decoded.ID, job.ID)
	}
}

type fakeMessage struct {
	job     *Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *fakeMessage) Ack() error { m.acked = true; return nil }
func (m *fakeMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}
func (m *fakeMessage) GetJob() *Job { return m.job }

func TestRabbitMQQueue_Requeue_ExhaustedGoesToDLQ(t *testing.T) {
	t.Parallel()

	q := &RabbitMQQueue{}
	msg := &fakeMessage{job: &Job{RetryCount: 3, MaxRetries: 3}}

	if err := q.Requeue(context.Background(), msg); err != nil {
		t.Fatalf("Requeue() error = %v", err)
	}
	if !msg.nacked || msg.requeue {
		t.Errorf("expected nack without requeue, got nacked=%v requeue=%v", msg.nacked, msg.requeue)
	}
	if msg.acked {
		t.Error("exhausted message should not be acked")
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
