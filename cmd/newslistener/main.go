package main

import (
	"newslistener/cmd/handlers"
	"newslistener/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
