package main

import (
	"log"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/server"
)

// @title           Task Board API
// @version         1.0
// @description     API for the collaborative task board: tasks, comments, attachments and realtime sync.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey PrincipalAuth
// @in header
// @name x-ms-client-principal
// @description Base64-encoded client principal JSON injected by the identity proxy.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
