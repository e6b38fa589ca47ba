package main

import (
	"context"

	"github.com/sant0-9/policygen/internal/action"
	"github.com/sant0-9/policygen/internal/config"
	"github.com/sant0-9/policygen/internal/flow"
	"github.com/sant0-9/policygen/internal/i18n"
	"github.com/sant0-9/policygen/internal/llm"
	"github.com/sant0-9/policygen/internal/pipeline"
	"github.com/sant0-9/policygen/internal/transport/httpapi"
	"github.com/sant0-9/policygen/internal/tui"
)

// newProvider is swapped in tests.
var newProvider = llm.NewProvider

// localBackend runs the actions in process and pings the provider for
// readiness.
type localBackend struct {
	*action.Service
	provider llm.Provider
}

func (b *localBackend) Ping(ctx context.Context) error {
	return b.provider.Ping(ctx)
}

// newBackend returns the remote client when --server is set, the in-process
// stack otherwise.
func newBackend(ctx context.Context, c *config.Config) (tui.Backend, error) {
	if serverURL != "" {
		return httpapi.NewClient(serverURL, i18n.For(c.Language), log), nil
	}
	return newLocalBackend(ctx, c)
}

func newLocalBackend(ctx context.Context, c *config.Config) (*localBackend, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	provider, err := newProvider(ctx, c)
	if err != nil {
		return nil, err
	}

	inv := pipeline.NewInvoker(provider, c, log)
	svc := action.New(flow.New(inv, log), action.Options{
		Retries:  c.Generation.Retries,
		Language: c.Language,
		Logger:   log,
	})
	return &localBackend{Service: svc, provider: provider}, nil
}
