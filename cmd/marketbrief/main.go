package main

import (
	"marketbrief/cmd/cmd"
	"marketbrief/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	cmd.Execute()
}
