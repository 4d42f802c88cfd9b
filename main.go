package main

import (
	"log"

	"github.com/autobotela-sys/zap-trading/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("could not start application: %v", err)
	}
}
