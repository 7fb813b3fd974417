package gojob

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

// TokenWarmer drains token.warmup deliveries and pre-populates the app-only
// token cache so interactive paths hit warm entries.
type TokenWarmer struct {
	service     core.TokenService
	credentials core.CredentialStore
	policy      RetryPolicy
	logger      glog.Logger
}

func NewTokenWarmer(service core.TokenService, credentials core.CredentialStore, policy RetryPolicy, logger glog.Logger) (*TokenWarmer, error) {
	if service == nil {
		return nil, fmt.Errorf("gojob: token service is required")
	}
	if credentials == nil {
		return nil, fmt.Errorf("gojob: credential store is required")
	}
	_, logger = glog.Resolve("token-warmup", nil, logger)
	return &TokenWarmer{
		service:     service,
		credentials: credentials,
		policy:      policy,
		logger:      logger,
	}, nil
}

// Process handles one delivery. Acquisition failures nack with the retry
// policy applied; malformed messages are acked and dropped.
func (w *TokenWarmer) Process(ctx context.Context, delivery core.JobDelivery) error {
	if w == nil || w.service == nil {
		return fmt.Errorf("gojob: token warmer is not configured")
	}
	if delivery == nil {
		return fmt.Errorf("gojob: delivery is required")
	}

	msg := delivery.Message()
	if msg == nil || msg.JobID != JobIDTokenWarmup {
		w.logger.Warn("dropping unexpected warmup delivery", "job_id", jobID(msg))
		return delivery.Ack(ctx)
	}

	authority := paramString(msg.Parameters, "authority")
	resource := paramString(msg.Parameters, "resource")
	applicationID := paramString(msg.Parameters, "application_id")
	if authority == "" || resource == "" || applicationID == "" {
		w.logger.Warn("dropping malformed warmup delivery",
			"authority", authority,
			"resource", resource,
			"application_id", applicationID,
		)
		return delivery.Ack(ctx)
	}

	credential, err := w.credentials.GetApplicationCredential(ctx, applicationID)
	if err != nil {
		return w.nack(ctx, delivery, "credential lookup failed: "+err.Error())
	}

	if _, err := w.service.AcquireAppOnly(ctx, core.AppOnlyRequest{
		Authority:  authority,
		Resource:   resource,
		Credential: credential,
	}); err != nil {
		return w.nack(ctx, delivery, "acquisition failed: "+err.Error())
	}

	w.logger.Debug("token warmup complete",
		"authority", authority,
		"resource", resource,
		"application_id", applicationID,
	)
	return delivery.Ack(ctx)
}

func (w *TokenWarmer) nack(ctx context.Context, delivery core.JobDelivery, reason string) error {
	opts := w.policy.NormalizeAttempt(core.JobNackOptions{
		Requeue: true,
		Reason:  reason,
	}, 0)
	return delivery.Nack(ctx, opts)
}

func jobID(msg *core.JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	return msg.JobID
}

func paramString(params map[string]any, key string) string {
	if len(params) == 0 {
		return ""
	}
	value, ok := params[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
