package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mohamedwael201193/octaneshift-api-sub000/cmd"
)

func main() {
	// A .env file is optional in deployment; real env vars always win.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
