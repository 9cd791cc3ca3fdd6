package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/ivanzorin/wedding-backend/internal/config"
	"github.com/ivanzorin/wedding-backend/internal/logger"
	"github.com/ivanzorin/wedding-backend/internal/provider"
	"github.com/ivanzorin/wedding-backend/internal/worker"
)

// zvonokProvider адаптирует клиента Zvonok к контракту воркера.
type zvonokProvider struct {
	client *provider.ZvonokClient
}

func (p *zvonokProvider) SendFlashCall(ctx context.Context, phone string) (string, error) {
	call, err := p.client.SendFlashCall(ctx, phone)
	if err != nil {
		return "", err
	}
	return call.Pincode, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("callworker: ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	zvonok := provider.NewZvonokClient(cfg.ZvonokAPIKey, cfg.ZvonokCampaignID)
	if !zvonok.Configured() {
		log.Fatal("callworker: ZVONOK_API_KEY и ZVONOK_CAMPAIGN_ID обязательны")
	}

	natsConn, err := nats.Connect(cfg.NatsURL, nats.Name("wedding-callworker"))
	if err != nil {
		log.Fatalf("callworker: ошибка подключения к nats: %v", err)
	}
	defer natsConn.Drain()

	w := worker.NewCallWorker(natsConn, cfg.CallSubject, &zvonokProvider{client: zvonok})
	sub, err := w.Start(ctx)
	if err != nil {
		log.Fatalf("callworker: не удалось подписаться на %s: %v", cfg.CallSubject, err)
	}
	defer sub.Unsubscribe()

	log.Printf("callworker: слушаем %s", cfg.CallSubject)
	<-ctx.Done()
	log.Print("callworker: остановка")
}
