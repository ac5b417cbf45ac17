package main

import (
	"github.com/joho/godotenv"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/cli"
)

func main() {
	_ = godotenv.Load()

	cli.Execute()
}
