package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"DocAnalystAI/app/configs"
)

// Config defines the configuration for a notification connector
type Config struct {
	Type    string            `yaml:"type" json:"type"`
	Enabled bool              `yaml:"enabled" json:"enabled"`
	Config  map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

// ConfigsFrom lists the connectors described by the publish settings.
func ConfigsFrom(publish configs.PublishConfig) []Config {
	return []Config{{
		Type:    "discord",
		Enabled: publish.Discord.Token != "",
		Config: map[string]string{
			"token":      publish.Discord.Token,
			"channel_id": publish.Discord.ChannelID,
		},
	}}
}

type Registry struct {
	mu      sync.RWMutex
	clients []Interface
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make([]Interface, 0),
	}
}

func (r *Registry) Register(client Interface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients = append(r.clients, client)
}

func (r *Registry) GetAll() []Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Interface, len(r.clients))
	copy(result, r.clients)
	return result
}

// Notify delivers n to every registered client. Failures are logged and counted, never returned.
func (r *Registry) Notify(ctx context.Context, n Notification) int {
	failed := 0
	for _, client := range r.GetAll() {
		if err := client.Notify(ctx, n); err != nil {
			failed++
			slog.Warn("⚠️ Notification failed", "client", client.Name(), "error", err)
			continue
		}
		slog.Info("📣 Notification sent", "client", client.Name())
	}
	return failed
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, client := range r.clients {
		if closer, ok := client.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("⚠️ Error closing client", "client", client.Name(), "error", err)
			}
		}
	}
	r.clients = make([]Interface, 0)
}

func CreateClient(cfg Config) (Interface, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("client %s is disabled", cfg.Type)
	}

	switch cfg.Type {
	case "discord":
		return NewDiscordClientFromConfig(cfg.Config)
	default:
		return nil, fmt.Errorf("unknown client type: %s", cfg.Type)
	}
}
