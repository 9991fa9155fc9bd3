package main

import (
	"log"

	"github.com/MrSnakeDoc/singme/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ singme failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ singme failed: %v", err)
	}
}
