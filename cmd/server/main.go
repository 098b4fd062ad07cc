package main

import (
	"log"
)

func main() {
	config := LoadConfig()

	server, err := NewServer(config)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}
	defer server.Close()

	if err := server.Run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
