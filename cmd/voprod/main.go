package main

import (
	"log"

	"github.com/astroview/voprod/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ voprod failed to start: %v", err)
	}
}
