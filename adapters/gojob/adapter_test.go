package gojob

import (
	"context"
	"errors"
	"testing"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

func TestMessageMappingRoundTrip(t *testing.T) {
	original := NewTokenWarmupMessage("https://login.example/tenant", "https://graph.example", "app-1")

	converted := ToExecutionMessage(original)
	if converted == nil {
		t.Fatalf("expected converted message")
	}
	roundTrip := FromExecutionMessage(converted)
	if roundTrip.JobID != JobIDTokenWarmup {
		t.Fatalf("expected job id %q, got %q", JobIDTokenWarmup, roundTrip.JobID)
	}
	if roundTrip.IdempotencyKey != "app-1|https://graph.example" {
		t.Fatalf("expected idempotency key mapping, got %q", roundTrip.IdempotencyKey)
	}
	if roundTrip.DedupPolicy != "drop" {
		t.Fatalf("expected drop dedup policy, got %q", roundTrip.DedupPolicy)
	}
	if roundTrip.Parameters["application_id"] != "app-1" {
		t.Fatalf("expected parameters to survive mapping")
	}
}

func TestEnqueueAndDequeueAdapters(t *testing.T) {
	ctx := context.Background()
	enqueuer := &stubQueueEnqueuer{}
	enqueueAdapter := NewEnqueuerAdapter(enqueuer)

	msg := NewTokenWarmupMessage("https://login.example/tenant", "https://graph.example", "app-1")
	if err := enqueueAdapter.Enqueue(ctx, msg); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if enqueuer.last == nil || enqueuer.last.JobID != JobIDTokenWarmup {
		t.Fatalf("expected mapped go-job message")
	}

	dequeuer := &stubQueueDequeuer{delivery: &stubQueueDelivery{msg: enqueuer.last}}
	dequeueAdapter := NewDequeuerAdapter(dequeuer, RetryPolicy{})
	delivery, err := dequeueAdapter.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	got := delivery.Message()
	if got == nil || got.JobID != JobIDTokenWarmup {
		t.Fatalf("expected mapped core message")
	}
	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}
	if !dequeuer.delivery.(*stubQueueDelivery).acked {
		t.Fatalf("expected ack on underlying delivery")
	}
}

func TestNackRetryPolicyBoundaries(t *testing.T) {
	ctx := context.Background()
	rawDelivery := &stubQueueDelivery{
		msg: &job.ExecutionMessage{
			JobID: JobIDCredentialRotation,
		},
	}
	adapter := NewDeliveryAdapter(rawDelivery, RetryPolicy{
		MaxAttempts:     3,
		MaxDelay:        10 * time.Second,
		DeadLetterOnMax: true,
	})

	if err := adapter.NackForAttempt(ctx, core.JobNackOptions{
		Delay:   30 * time.Second,
		Requeue: true,
		Reason:  "transient",
	}, 1); err != nil {
		t.Fatalf("nack attempt 1: %v", err)
	}
	if rawDelivery.nackOpts.Delay != 10*time.Second {
		t.Fatalf("expected delay to be bounded, got %s", rawDelivery.nackOpts.Delay)
	}
	if !rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected message to be requeued before max attempts")
	}

	if err := adapter.NackForAttempt(ctx, core.JobNackOptions{
		Delay:   time.Second,
		Requeue: true,
		Reason:  "still failing",
	}, 3); err != nil {
		t.Fatalf("nack max attempt: %v", err)
	}
	if rawDelivery.nackOpts.Requeue {
		t.Fatalf("expected no requeue once max attempts is reached")
	}
	if !rawDelivery.nackOpts.DeadLetter {
		t.Fatalf("expected dead letter on max attempts")
	}
}

func TestWorkerHookAdapterEventMapping(t *testing.T) {
	now := time.Now().UTC().Add(-time.Second)
	coreHook := &capturingHook{}
	adapter := NewWorkerHookAdapter(coreHook)

	evt := worker.Event{
		Message: &job.ExecutionMessage{
			JobID:          JobIDCachePrune,
			IdempotencyKey: "idem-prune",
		},
		Attempt:   2,
		Delay:     5 * time.Second,
		Err:       errors.New("retry"),
		StartedAt: now,
		Duration:  250 * time.Millisecond,
	}

	adapter.OnRetry(context.Background(), evt)
	if coreHook.last.Message == nil {
		t.Fatalf("expected worker message mapping")
	}
	if coreHook.last.Message.JobID != JobIDCachePrune {
		t.Fatalf("expected job id mapping, got %q", coreHook.last.Message.JobID)
	}
	if coreHook.last.Attempt != 2 {
		t.Fatalf("expected attempt 2, got %d", coreHook.last.Attempt)
	}
	if coreHook.last.Delay != 5*time.Second {
		t.Fatalf("expected delay 5s, got %s", coreHook.last.Delay)
	}
	if coreHook.last.Duration != 250*time.Millisecond {
		t.Fatalf("expected duration mapping")
	}
	if coreHook.last.StartedAt.IsZero() {
		t.Fatalf("expected started_at mapping")
	}
	if coreHook.last.Err == nil || coreHook.last.Err.Error() != "retry" {
		t.Fatalf("expected error mapping")
	}
}

func TestTokenWarmer_ProcessAcquiresAndAcks(t *testing.T) {
	ctx := context.Background()
	service := &stubTokenService{}
	credentials := stubCredentialStore{
		credential: core.ApplicationCredential{
			ApplicationID:     "app-1",
			ApplicationSecret: core.NewSecureSecret("s3cr3t-value"),
			UseCache:          true,
		},
	}

	warmer, err := NewTokenWarmer(service, credentials, RetryPolicy{MaxAttempts: 3}, nil)
	if err != nil {
		t.Fatalf("new token warmer: %v", err)
	}

	delivery := &stubCoreDelivery{
		msg: NewTokenWarmupMessage("https://login.example/tenant", "https://graph.example", "app-1"),
	}
	if err := warmer.Process(ctx, delivery); err != nil {
		t.Fatalf("process warmup: %v", err)
	}
	if !delivery.acked {
		t.Fatalf("expected successful warmup to ack")
	}
	if service.appOnlyCalls != 1 {
		t.Fatalf("expected one app-only acquisition, got %d", service.appOnlyCalls)
	}
	if service.lastAppOnly.Resource != "https://graph.example" {
		t.Fatalf("unexpected warmup resource %q", service.lastAppOnly.Resource)
	}
	if service.lastAppOnly.Credential.ApplicationID != "app-1" {
		t.Fatalf("unexpected warmup application %q", service.lastAppOnly.Credential.ApplicationID)
	}
}

func TestTokenWarmer_AcquisitionFailureNacks(t *testing.T) {
	ctx := context.Background()
	service := &stubTokenService{appOnlyErr: errors.New("authority unavailable")}
	credentials := stubCredentialStore{
		credential: core.ApplicationCredential{
			ApplicationID:     "app-1",
			ApplicationSecret: core.NewSecureSecret("s3cr3t-value"),
		},
	}

	warmer, err := NewTokenWarmer(service, credentials, RetryPolicy{MaxAttempts: 3}, nil)
	if err != nil {
		t.Fatalf("new token warmer: %v", err)
	}

	delivery := &stubCoreDelivery{
		msg: NewTokenWarmupMessage("https://login.example/tenant", "https://graph.example", "app-1"),
	}
	if err := warmer.Process(ctx, delivery); err != nil {
		t.Fatalf("process warmup: %v", err)
	}
	if delivery.acked {
		t.Fatalf("expected failed warmup not to ack")
	}
	if !delivery.nacked {
		t.Fatalf("expected failed warmup to nack")
	}
	if !delivery.nackOpts.Requeue {
		t.Fatalf("expected requeue below max attempts")
	}
}

func TestTokenWarmer_MalformedDeliveryIsDropped(t *testing.T) {
	ctx := context.Background()
	service := &stubTokenService{}
	warmer, err := NewTokenWarmer(service, stubCredentialStore{}, RetryPolicy{}, nil)
	if err != nil {
		t.Fatalf("new token warmer: %v", err)
	}

	delivery := &stubCoreDelivery{
		msg: &core.JobExecutionMessage{JobID: JobIDTokenWarmup},
	}
	if err := warmer.Process(ctx, delivery); err != nil {
		t.Fatalf("process malformed warmup: %v", err)
	}
	if !delivery.acked {
		t.Fatalf("expected malformed delivery to be acked and dropped")
	}
	if service.appOnlyCalls != 0 {
		t.Fatalf("expected no acquisition for malformed delivery")
	}
}

type stubQueueEnqueuer struct {
	last *job.ExecutionMessage
}

func (s *stubQueueEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	s.last = msg
	return nil
}

type stubQueueDequeuer struct {
	delivery queue.Delivery
}

func (s *stubQueueDequeuer) Dequeue(context.Context) (queue.Delivery, error) {
	return s.delivery, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type capturingHook struct {
	last core.JobWorkerEvent
}

func (h *capturingHook) OnStart(context.Context, core.JobWorkerEvent)   {}
func (h *capturingHook) OnSuccess(context.Context, core.JobWorkerEvent) {}
func (h *capturingHook) OnFailure(context.Context, core.JobWorkerEvent) {}
func (h *capturingHook) OnRetry(_ context.Context, event core.JobWorkerEvent) {
	h.last = event
}

type stubCoreDelivery struct {
	msg      *core.JobExecutionMessage
	acked    bool
	nacked   bool
	nackOpts core.JobNackOptions
}

func (s *stubCoreDelivery) Message() *core.JobExecutionMessage {
	return s.msg
}

func (s *stubCoreDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubCoreDelivery) Nack(_ context.Context, opts core.JobNackOptions) error {
	s.nacked = true
	s.nackOpts = opts
	return nil
}

type stubTokenService struct {
	appOnlyCalls int
	lastAppOnly  core.AppOnlyRequest
	appOnlyErr   error
}

func (s *stubTokenService) AcquireByAuthorizationCode(context.Context, core.AuthorizationCodeRequest) (core.AuthenticationResult, error) {
	return core.AuthenticationResult{}, errors.New("not implemented")
}

func (s *stubTokenService) AcquireSilent(context.Context, core.SilentRequest) (core.AuthenticationResult, error) {
	return core.AuthenticationResult{}, errors.New("not implemented")
}

func (s *stubTokenService) AcquireAppOnly(_ context.Context, req core.AppOnlyRequest) (core.AuthenticationResult, error) {
	s.appOnlyCalls++
	s.lastAppOnly = req
	if s.appOnlyErr != nil {
		return core.AuthenticationResult{}, s.appOnlyErr
	}
	return core.AuthenticationResult{TokenType: "Bearer", AccessToken: "tok-warm"}, nil
}

func (s *stubTokenService) AcquireOnBehalfOf(context.Context, core.OnBehalfOfRequest) (core.AuthenticationResult, error) {
	return core.AuthenticationResult{}, errors.New("not implemented")
}

func (s *stubTokenService) AuthorizationRequestURL(context.Context, core.AuthorizationURLRequest) (string, error) {
	return "", errors.New("not implemented")
}

type stubCredentialStore struct {
	credential core.ApplicationCredential
	err        error
}

func (s stubCredentialStore) GetApplicationCredential(context.Context, string) (core.ApplicationCredential, error) {
	if s.err != nil {
		return core.ApplicationCredential{}, s.err
	}
	if s.credential.ApplicationID == "" {
		return core.ApplicationCredential{}, errors.New("credential not found")
	}
	return s.credential, nil
}

var (
	_ core.TokenService    = (*stubTokenService)(nil)
	_ core.CredentialStore = stubCredentialStore{}
	_ core.JobDelivery     = (*stubCoreDelivery)(nil)
)
