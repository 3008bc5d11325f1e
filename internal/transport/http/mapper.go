package http

import (
	"encoding/json"
	"time"

	"github.com/nikhilkushawaha/teammates-backend/internal/chat"
	"github.com/nikhilkushawaha/teammates-backend/internal/core"
	"github.com/nikhilkushawaha/teammates-backend/internal/proto"
	"github.com/nikhilkushawaha/teammates-backend/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoinWorkspace:
		var join proto.JoinWorkspaceData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.WorkspaceID == "" {
			return nil, &proto.Error{Message: "Workspace ID is required", ErrorCode: chat.CodeValidation}, nil
		}
		return &core.Command{
			Kind:        core.CommandJoinWorkspace,
			WorkspaceID: join.WorkspaceID,
		}, nil, nil
	case proto.InboundTypeLeaveWorkspace:
		var leave proto.JoinWorkspaceData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		if leave.WorkspaceID == "" {
			return nil, &proto.Error{Message: "Workspace ID is required", ErrorCode: chat.CodeValidation}, nil
		}
		return &core.Command{
			Kind:        core.CommandLeaveWorkspace,
			WorkspaceID: leave.WorkspaceID,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.WorkspaceID == "" {
			return nil, &proto.Error{Message: "Workspace ID is required", ErrorCode: chat.CodeValidation}, nil
		}
		return &core.Command{
			Kind:        core.CommandSendMessage,
			WorkspaceID: msg.WorkspaceID,
			Text:        msg.Message,
		}, nil, nil
	case proto.InboundTypeTypingStart, proto.InboundTypeTypingStop:
		var typing proto.TypingData
		if err := json.Unmarshal(inbound.Data, &typing); err != nil {
			return nil, nil, err
		}
		if typing.WorkspaceID == "" {
			return nil, &proto.Error{Message: "Workspace ID is required", ErrorCode: chat.CodeValidation}, nil
		}
		kind := core.CommandTypingStart
		if inbound.Type == proto.InboundTypeTypingStop {
			kind = core.CommandTypingStop
		}
		return &core.Command{
			Kind:        kind,
			WorkspaceID: typing.WorkspaceID,
		}, nil, nil
	default:
		return nil, &proto.Error{Message: "unknown event type", ErrorCode: chat.CodeValidation}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventNewMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNewMessage,
			Data: proto.EventNewMessageData{
				ChatMessage: chatMessagePayload(event.Message),
			},
		}
	case core.EventUserJoined:
		return presenceOutbound(proto.EventUserJoined, event)
	case core.EventUserTyping:
		return presenceOutbound(proto.EventUserTyping, event)
	case core.EventUserStoppedTyping:
		return presenceOutbound(proto.EventUserStoppedTyping, event)
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Message: "unknown error", ErrorCode: chat.CodeInternal},
			}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Message: event.Error.Message, ErrorCode: event.Error.Code},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func presenceOutbound(name string, event *core.Event) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: name,
		Data: proto.EventPresenceData{
			UserID:   event.UserID,
			UserName: event.UserName,
		},
	}
}

func chatMessagePayload(m *store.ChatMessage) proto.ChatMessage {
	payload := proto.ChatMessage{
		ID:          m.ID,
		WorkspaceID: m.WorkspaceID,
		Message:     m.Body,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339Nano),
	}
	if m.Sender != nil {
		payload.Sender = proto.Sender{
			ID:        m.Sender.ID,
			Name:      m.Sender.Name,
			Email:     m.Sender.Email,
			AvatarURL: m.Sender.AvatarURL,
		}
	} else {
		payload.Sender = proto.Sender{ID: m.SenderID}
	}
	return payload
}
