// Package secrets resolves startup credentials from Google Secret Manager.
package secrets

import (
	"context"
	"fmt"

	"cloud.google.com/go/compute/metadata"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	"palmchat-backend/internal/config"
)

// ProjectNumber returns the numeric project id from the GCE metadata server.
// Secret resource names use the numeric id rather than the project id string.
func ProjectNumber(ctx context.Context) (string, error) {
	n, err := metadata.NumericProjectIDWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: query project number from metadata server: %v", config.ErrConfiguration, err)
	}
	return n, nil
}

// Access returns the payload of the latest version of the named secret.
func Access(ctx context.Context, client *secretmanager.Client, projectNumber, name string) (string, error) {
	res, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectNumber, name),
	})
	if err != nil {
		return "", fmt.Errorf("%w: access secret %s: %v", config.ErrConfiguration, name, err)
	}
	return string(res.GetPayload().GetData()), nil
}

// ResolveSlackCredentials fills in the Slack bot token and signing secret from
// Secret Manager for any that were not provided via environment variables.
func ResolveSlackCredentials(ctx context.Context, cfg *config.Config) error {
	if cfg.SlackBotToken != "" && cfg.SlackSigningSecret != "" {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("%w: create secret manager client: %v", config.ErrConfiguration, err)
	}
	defer client.Close()

	projectNumber, err := ProjectNumber(ctx)
	if err != nil {
		return err
	}

	if cfg.SlackBotToken == "" {
		if cfg.SlackBotToken, err = Access(ctx, client, projectNumber, cfg.SlackBotTokenSecret); err != nil {
			return err
		}
	}
	if cfg.SlackSigningSecret == "" {
		if cfg.SlackSigningSecret, err = Access(ctx, client, projectNumber, cfg.SlackSigningSecretName); err != nil {
			return err
		}
	}
	return nil
}
