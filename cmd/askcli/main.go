package main

import (
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ai-assistant-be/internal/client"
	"ai-assistant-be/internal/tui"
)

func main() {
	baseURL := os.Getenv("ASSISTANT_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000/api"
	}
	token := os.Getenv("ASSISTANT_API_TOKEN")
	if token == "" {
		log.Fatal("ASSISTANT_API_TOKEN is required")
	}

	// TUI owns the terminal; client logs go to a file or nowhere.
	clientLogger := log.New(io.Discard, "", 0)
	if logPath := os.Getenv("ASSISTANT_CLI_LOG"); logPath != "" {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			clientLogger = log.New(f, "", log.LstdFlags)
		}
	}

	api := client.NewClient(baseURL, token)
	program := tea.NewProgram(tui.New(api, clientLogger), tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		log.Fatalf("TUI exited with error: %v", err)
	}
}
