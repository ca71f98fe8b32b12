package main

import (
	"os"

	"go-musician-booking/core/logger"
	"go-musician-booking/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
		os.Exit(1)
	}
}
