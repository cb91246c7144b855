//go:build ignore

// Manual smoke test for the streaming ask endpoint. Prints every frame as
// it arrives so chunk timing and frame order can be eyeballed.
//
//	ASSISTANT_API_TOKEN=... go run scripts/stream_smoke.go "what's in my inbox about the offsite?"
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"ai-assistant-be/pkg/frame"
)

const baseURL = "http://localhost:3000/api"

type printer struct{}

func (printer) OnSources(sources []frame.Source) {
	fmt.Printf("--- sources (%d) ---\n", len(sources))
	for i, s := range sources {
		fmt.Printf("  %d. [%s] %s %s\n", i+1, s.Type, s.Title, s.URL)
	}
}

func (printer) OnTiming(seconds float64) {
	fmt.Printf("--- search took %.2fs ---\n", seconds)
}

func (printer) OnChunk(text string) {
	fmt.Print(text)
}

func (printer) OnError(message string) {
	fmt.Printf("\n--- error: %s ---\n", message)
}

func main() {
	token := os.Getenv("ASSISTANT_API_TOKEN")
	if token == "" {
		log.Fatal("ASSISTANT_API_TOKEN is required")
	}
	message := "good morning"
	if len(os.Args) > 1 {
		message = os.Args[1]
	}

	body, _ := json.Marshal(map[string]interface{}{
		"message":          message,
		"live_web_enabled": true,
	})
	req, err := http.NewRequest(http.MethodPost, baseURL+"/ask/v1/stream", bytes.NewReader(body))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("unexpected status: %s", resp.Status)
	}

	dec := frame.NewDecoder(printer{}, log.Default())
	buf := make([]byte, 512)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
		}
		if err != nil {
			break
		}
	}
	dec.Close()
	fmt.Println("\n--- stream closed ---")
}
