package config

import (
	"context"
	"fmt"
	"log/slog"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

type secretAccessor interface {
	Access(ctx context.Context, name string) (string, error)
}

type gcpSecrets struct {
	client  *secretmanager.Client
	project string
}

func (s *gcpSecrets) Access(ctx context.Context, name string) (string, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.project, name),
	})
	if err != nil {
		return "", fmt.Errorf("access secret %s: %w", name, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

func (c *Config) secretTargets() map[string]*string {
	return map[string]*string{
		"openai-api-key":       &c.OpenAIAPIKey,
		"groq-api-key":         &c.GroqAPIKey,
		"google-api-key":       &c.GoogleAPIKey,
		"google-client-secret": &c.GoogleClientSecret,
		"database-url":         &c.DatabaseURL,
	}
}

func (c *Config) missingSecrets() bool {
	for _, target := range c.secretTargets() {
		if *target == "" {
			return true
		}
	}
	return false
}

func loadSecrets(ctx context.Context, cfg *Config) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		slog.Warn("Secret Manager unavailable, using environment only", "error", err)
		return
	}
	defer func() { _ = client.Close() }()

	resolveSecrets(ctx, cfg, &gcpSecrets{client: client, project: cfg.GCPProject})
}

// resolveSecrets fills empty credentials from the accessor. Missing secrets
// are not an error; the feature that needs them stays disabled.
func resolveSecrets(ctx context.Context, cfg *Config, accessor secretAccessor) {
	for name, target := range cfg.secretTargets() {
		if *target != "" {
			continue
		}
		value, err := accessor.Access(ctx, name)
		if err != nil {
			slog.Debug("Secret not resolved", "name", name, "error", err)
			continue
		}
		*target = value
	}
}
