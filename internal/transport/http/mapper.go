package http

import (
	"encoding/json"

	"github.com/supportline/supportline-server/internal/core"
	"github.com/supportline/supportline-server/internal/proto"
)

// inboundToCommand maps a wire event onto a typed command. A non-nil
// proto error means the payload was rejected and should be reported to
// the sender without touching the hub.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.ErrorPayload, error) {
	switch inbound.Event {
	case proto.InboundMessageSend:
		var data proto.SendData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ChatID == "" || data.To == "" {
			return nil, &proto.ErrorPayload{Message: "chatId and to are required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandSendMessage,
			ChatID:  data.ChatID,
			To:      core.ParseRecipient(data.To),
			Content: data.Content,
		}, nil, nil

	case proto.InboundTyping, proto.InboundStopTyping:
		var data proto.TypingData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.To == "" {
			return nil, &proto.ErrorPayload{Message: "to is required"}, nil
		}
		kind := core.CommandTyping
		if inbound.Event == proto.InboundStopTyping {
			kind = core.CommandStopTyping
		}
		return &core.Command{
			Kind:   kind,
			ChatID: data.ChatID,
			To:     core.ParseRecipient(data.To),
		}, nil, nil

	case proto.InboundTakeChat:
		var data proto.TakeChatData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ChatID == "" || data.CustomerID == "" {
			return nil, &proto.ErrorPayload{Message: "chatId and customerId are required"}, nil
		}
		return &core.Command{
			Kind:       core.CommandTakeChat,
			ChatID:     data.ChatID,
			CustomerID: data.CustomerID,
		}, nil, nil

	case proto.InboundResolveChat:
		var data proto.ResolveChatData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ChatID == "" || data.CustomerID == "" {
			return nil, &proto.ErrorPayload{Message: "chatId and customerId are required"}, nil
		}
		return &core.Command{
			Kind:       core.CommandResolveChat,
			ChatID:     data.ChatID,
			CustomerID: data.CustomerID,
		}, nil, nil

	default:
		return nil, &proto.ErrorPayload{Message: "unknown event"}, nil
	}
}

func messageBody(msg *core.Message) proto.MessageBody {
	return proto.MessageBody{
		ID:      msg.ID,
		Content: msg.Content,
		Sender: proto.UserRef{
			ID:   msg.Sender.ID,
			Name: msg.Sender.Name,
		},
		ChatID:    msg.ChatID,
		CreatedAt: msg.CreatedAt,
	}
}

// outboundFromEvent maps a core event onto its wire form.
func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessageReceived:
		return proto.Outbound{
			Event: proto.OutboundMessageReceived,
			Data:  proto.MessagePayload{Message: messageBody(event.Message)},
		}
	case core.EventSupportNeeded:
		return proto.Outbound{
			Event: proto.OutboundSupportNeeded,
			Data:  proto.MessagePayload{Message: messageBody(event.Message)},
		}
	case core.EventTyping:
		return proto.Outbound{
			Event: proto.OutboundTyping,
			Data: proto.TypingPayload{
				ChatID: event.ChatID,
				UserID: event.Actor.ID,
				Name:   event.Actor.Name,
			},
		}
	case core.EventStopTyping:
		return proto.Outbound{
			Event: proto.OutboundStopTyping,
			Data: proto.TypingPayload{
				ChatID: event.ChatID,
				UserID: event.Actor.ID,
			},
		}
	case core.EventSupportJoined:
		return proto.Outbound{
			Event: proto.OutboundSupportJoined,
			Data: proto.SupportJoinedPayload{
				ChatID: event.ChatID,
				Support: proto.UserRef{
					ID:   event.Actor.ID,
					Name: event.Actor.Name,
				},
			},
		}
	case core.EventChatTaken:
		return proto.Outbound{
			Event: proto.OutboundChatTaken,
			Data: proto.ChatTakenPayload{
				ChatID:      event.ChatID,
				CustomerID:  event.CustomerID,
				SupportID:   event.Actor.ID,
				SupportName: event.Actor.Name,
			},
		}
	case core.EventChatResolved:
		return proto.Outbound{
			Event: proto.OutboundChatResolved,
			Data: proto.ChatResolvedPayload{
				ChatID:     event.ChatID,
				CustomerID: event.CustomerID,
				ResolvedBy: proto.UserRef{
					ID:   event.Actor.ID,
					Name: event.Actor.Name,
				},
			},
		}
	case core.EventSupportConnected:
		return proto.Outbound{
			Event: proto.OutboundSupportConnected,
			Data: proto.SupportPresencePayload{
				SupportID: event.Actor.ID,
				Name:      event.Actor.Name,
			},
		}
	case core.EventSupportDisconnected:
		return proto.Outbound{
			Event: proto.OutboundSupportDisconnected,
			Data: proto.SupportPresencePayload{
				SupportID: event.Actor.ID,
				Name:      event.Actor.Name,
			},
		}
	case core.EventError:
		msg := "unknown error"
		if event.Error != nil {
			msg = event.Error.Message
		}
		return proto.Outbound{
			Event: proto.OutboundError,
			Data:  proto.ErrorPayload{Message: msg},
		}
	default:
		return proto.Outbound{Event: proto.OutboundError, Data: proto.ErrorPayload{Message: "unknown event"}}
	}
}
