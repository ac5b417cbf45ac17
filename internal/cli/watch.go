package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var requestMatch bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream game events over the websocket",
		Long: `Connect to the game websocket and stream events in real-time.

Events include:
  - waiting_for_player: Queued, waiting for an opponent
  - searching_for_partner: Partner search in progress
  - game_started: A game session began
  - game_message: Chat message from the opponent
  - typing_indicator: Opponent typing state changed
  - guess_result: Round resolved with the verdict
  - restart_game: Released to start a new round
  - opponent_left: Opponent disconnected

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(jsonOutput, requestMatch)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&requestMatch, "request-match", false, "Request a match after connecting")

	return cmd
}

// WireEvent represents a received game event
type WireEvent struct {
	Time    time.Time       `json:"time"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func streamEvents(jsonOutput, requestMatch bool) error {
	if cfg.Token == "" {
		return fmt.Errorf("no session token; run 'queuectl player guest' first")
	}

	wsURL := strings.TrimSuffix(cfg.ServerURL, "/") + "/api/v1/ws?token=" + cfg.Token
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: %w (HTTP %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Println("Connected")
	}

	// Handle interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if requestMatch {
		if err := conn.WriteJSON(map[string]string{"event": "request_match"}); err != nil {
			return fmt.Errorf("failed to request match: %w", err)
		}
	}

	for {
		var event WireEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		event.Time = time.Now()
		printEvent(event, jsonOutput)
	}
}

func printEvent(event WireEvent, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(event)
		fmt.Println(string(data))
		return
	}

	timestamp := event.Time.Format("2006-01-02 15:04:05")
	displayData := string(event.Payload)
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", timestamp, event.Event, displayData)
}
