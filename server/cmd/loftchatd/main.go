package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"loft-chat/server/internal/api"
	"loft-chat/server/internal/config"
	"loft-chat/server/internal/domain"
	"loft-chat/server/internal/hub"
	"loft-chat/server/internal/session"
	"loft-chat/server/internal/store"
)

func main() {
	// 第一阶段以“本地可跑、可调试”为优先：配置走 YAML 文件，
	// 部署相关项（端口、种子路径）可用 LOFT_PORT / LOFT_SEED_PATH 环境变量覆盖。
	configPath := flag.String("config", "server/configs/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	seed, err := domain.LoadSeed(cfg.Paths.Seed)
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}

	st := store.NewInMemoryStore(time.Now)
	st.ApplySeed(seed)
	log.Printf("seed applied: space=%s rooms=%d users=%d", seed.Space.Slug, len(seed.Rooms), len(seed.Users))

	sessions := session.NewInMemoryStore(cfg.Session.TTL, time.Now)
	h := hub.New(log.Default())
	server := api.NewServer(cfg, sessions, st, h)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("loftchat server listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
