// Command ws_chat is a terminal chat client for manual testing: it logs
// in over REST, opens the authenticated websocket, prints incoming
// events and sends typed lines as messages.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/supportline/supportline-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "http://localhost:8080", "server base address")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "login password")
	chatID := flag.String("chat", "", "chat session id (create one via POST /api/chat/create)")
	to := flag.String("to", "support", "recipient: 'support' or a user id")
	flag.Parse()

	if *email == "" || *password == "" {
		return errors.New("email and password are required")
	}
	if *chatID == "" {
		return errors.New("chat id is required; create one via POST /api/chat/create")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	token, err := login(ctx, *addr, *email, *password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	wsAddr := strings.Replace(*addr, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.Dial(ctx, wsAddr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s as %s\n", *addr, *email)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *chatID, *to)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func login(ctx context.Context, addr, email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", err
	}
	return auth.Token, nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch outbound.Event {
		case proto.OutboundMessageReceived, proto.OutboundSupportNeeded:
			var payload proto.MessagePayload
			if err := json.Unmarshal(outbound.Data, &payload); err != nil {
				log.Printf("unmarshal %s: %v", outbound.Event, err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", payload.Message.ChatID, payload.Message.Sender.Name, payload.Message.Content)
		case proto.OutboundTyping:
			var payload proto.TypingPayload
			if err := json.Unmarshal(outbound.Data, &payload); err != nil {
				log.Printf("unmarshal typing: %v", err)
				continue
			}
			fmt.Printf("[%s] %s is typing...\n", payload.ChatID, payload.Name)
		case proto.OutboundSupportJoined:
			var payload proto.SupportJoinedPayload
			if err := json.Unmarshal(outbound.Data, &payload); err != nil {
				log.Printf("unmarshal support:joined: %v", err)
				continue
			}
			fmt.Printf("[%s] support agent %s joined\n", payload.ChatID, payload.Support.Name)
		case proto.OutboundChatResolved:
			var payload proto.ChatResolvedPayload
			if err := json.Unmarshal(outbound.Data, &payload); err != nil {
				log.Printf("unmarshal chat:resolved: %v", err)
				continue
			}
			fmt.Printf("[%s] resolved by %s\n", payload.ChatID, payload.ResolvedBy.Name)
		case proto.OutboundError:
			var payload proto.ErrorPayload
			if err := json.Unmarshal(outbound.Data, &payload); err != nil {
				log.Printf("unmarshal error: %v", err)
				continue
			}
			fmt.Printf("error: %s\n", payload.Message)
		default:
			fmt.Printf("event=%s data=%s\n", outbound.Event, outbound.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, chatID, to string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			payload, err := json.Marshal(proto.SendData{Content: text, To: to, ChatID: chatID})
			if err != nil {
				log.Printf("marshal send: %v", err)
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Event: proto.InboundMessageSend, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
