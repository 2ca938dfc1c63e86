package main

import (
	"asogen/cmd/cmd"
	"asogen/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
