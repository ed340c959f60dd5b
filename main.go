package main

import (
	"log"
	"os"
	"samplefetch/cmd"
	"samplefetch/config"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	code, err := cmd.Execute(cnf)
	if err != nil {
		log.Printf("Failed to execute command: %v", err)
	}
	os.Exit(code)
}
