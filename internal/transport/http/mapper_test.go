package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/supportline/supportline-server/internal/core"
	"github.com/supportline/supportline-server/internal/proto"
)

func inboundWith(t *testing.T, event string, data any) proto.Inbound {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("failed to marshal data: %v", err)
	}
	return proto.Inbound{Event: event, Data: raw}
}

func TestInboundToCommandSend(t *testing.T) {
	cmd, protoErr, err := inboundToCommand(inboundWith(t, proto.InboundMessageSend, proto.SendData{
		Content: "hello",
		To:      "support",
		ChatID:  "chat_1",
	}))
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected failure: %v %+v", err, protoErr)
	}
	if cmd.Kind != core.CommandSendMessage || cmd.ChatID != "chat_1" || cmd.Content != "hello" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	if !cmd.To.IsPool() {
		t.Fatalf("expected pool recipient, got %+v", cmd.To)
	}

	cmd, _, _ = inboundToCommand(inboundWith(t, proto.InboundMessageSend, proto.SendData{
		Content: "hello",
		To:      "u42",
		ChatID:  "chat_1",
	}))
	if cmd.To.IsPool() || cmd.To.RoomName() != "u42" {
		t.Fatalf("expected user recipient, got %+v", cmd.To)
	}
}

func TestInboundToCommandRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  any
	}{
		{"send without chat", proto.InboundMessageSend, proto.SendData{Content: "x", To: "support"}},
		{"send without recipient", proto.InboundMessageSend, proto.SendData{Content: "x", ChatID: "chat_1"}},
		{"typing without recipient", proto.InboundTyping, proto.TypingData{ChatID: "chat_1"}},
		{"take without customer", proto.InboundTakeChat, proto.TakeChatData{ChatID: "chat_1"}},
		{"resolve without chat", proto.InboundResolveChat, proto.ResolveChatData{CustomerID: "u1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd, protoErr, err := inboundToCommand(inboundWith(t, tc.event, tc.data))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if protoErr == nil {
				t.Fatalf("expected a rejection, got command %+v", cmd)
			}
		})
	}
}

func TestInboundToCommandUnknownEvent(t *testing.T) {
	cmd, protoErr, err := inboundToCommand(inboundWith(t, "shrug", map[string]string{}))
	if err != nil || cmd != nil {
		t.Fatalf("unexpected result: %+v %v", cmd, err)
	}
	if protoErr == nil || protoErr.Message != "unknown event" {
		t.Fatalf("expected unknown event rejection, got %+v", protoErr)
	}
}

func TestInboundToCommandStopTyping(t *testing.T) {
	cmd, protoErr, err := inboundToCommand(inboundWith(t, proto.InboundStopTyping, proto.TypingData{
		ChatID: "chat_1",
		To:     "support",
	}))
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected failure: %v %+v", err, protoErr)
	}
	if cmd.Kind != core.CommandStopTyping {
		t.Fatalf("expected stop-typing command, got %+v", cmd)
	}
}

func TestOutboundFromEventMessageReceived(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	out := outboundFromEvent(&core.Event{
		Kind: core.EventMessageReceived,
		Message: &core.Message{
			ID:        "m1",
			ChatID:    "chat_1",
			Sender:    core.Identity{ID: "u1", Name: "carol", Role: core.RoleCustomer},
			Content:   "hello",
			CreatedAt: now,
		},
	})
	if out.Event != proto.OutboundMessageReceived {
		t.Fatalf("unexpected event name: %q", out.Event)
	}
	payload, ok := out.Data.(proto.MessagePayload)
	if !ok {
		t.Fatalf("unexpected payload type: %T", out.Data)
	}
	if payload.Message.Sender.ID != "u1" || payload.Message.Content != "hello" || !payload.Message.CreatedAt.Equal(now) {
		t.Fatalf("unexpected payload: %+v", payload.Message)
	}
}

func TestOutboundFromEventChatTaken(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind:       core.EventChatTaken,
		ChatID:     "chat_1",
		CustomerID: "u1",
		Actor:      core.Identity{ID: "u2", Name: "alice", Role: core.RoleSupport},
	})
	if out.Event != proto.OutboundChatTaken {
		t.Fatalf("unexpected event name: %q", out.Event)
	}
	payload := out.Data.(proto.ChatTakenPayload)
	if payload.SupportID != "u2" || payload.CustomerID != "u1" || payload.SupportName != "alice" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestOutboundFromEventError(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind:  core.EventError,
		Error: &core.CoreError{Code: core.ErrCodeStoreFailure, Message: "could not save message"},
	})
	if out.Event != proto.OutboundError {
		t.Fatalf("unexpected event name: %q", out.Event)
	}
	if out.Data.(proto.ErrorPayload).Message != "could not save message" {
		t.Fatalf("unexpected payload: %+v", out.Data)
	}
}
