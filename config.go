package main

import (
	"context"
	"fmt"
	"log/slog"

	"DocAnalystAI/app/clients"
	"DocAnalystAI/app/configs"
	"DocAnalystAI/app/models"
	"DocAnalystAI/app/rag"
	"DocAnalystAI/app/report"
	"DocAnalystAI/app/storage"
)

func getModel(ctx context.Context, cfg *configs.Config) (models.Interface, error) {
	model, err := models.NewModel(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}
	slog.Info("🤖 Model client ready", "model", model.Name(), "embeddings", cfg.LLM.EmbeddingModel)
	return model, nil
}

func getVectors(cfg *configs.Config) (rag.VectorStore, error) {
	k := cfg.Knowledge
	switch k.VectorStore {
	case configs.StoreQdrant:
		return rag.NewQdrantStore(k.QdrantHost, k.QdrantPort, k.Table)
	default:
		return rag.NewSQLiteStore(k.StoreURI, k.Table)
	}
}

func getKnowledgeStore(model models.Interface, vectors rag.VectorStore, cfg *configs.Config) *rag.Client {
	return rag.NewClient(model, vectors, rag.WithChunking(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap))
}

func getHistory(cfg *configs.Config) storage.Interface {
	db, err := storage.NewSQLiteStorage(cfg.Output.HistoryDB)
	if err != nil {
		slog.Warn("⚠️ Run history disabled", "error", err)
		return nil
	}
	return db
}

func getPublisher(cfg *configs.Config) report.Publisher {
	m := cfg.Publish.MinIO
	if m.Endpoint == "" {
		return nil
	}
	p, err := report.NewMinioPublisher(m)
	if err != nil {
		slog.Warn("⚠️ Report publishing disabled", "error", err)
		return nil
	}
	return p
}

func getNotifiers(cfg *configs.Config) *clients.Registry {
	registry := clients.NewRegistry()
	for _, c := range clients.ConfigsFrom(cfg.Publish) {
		if !c.Enabled {
			continue
		}
		client, err := clients.CreateClient(c)
		if err != nil {
			slog.Warn("⚠️ Notification client disabled", "type", c.Type, "error", err)
			continue
		}
		registry.Register(client)
	}
	return registry
}
