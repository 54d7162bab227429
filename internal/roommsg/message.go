// Package roommsg is the room actor's wire protocol: the JSON message
// envelope carried over the web-socket, and the payload shapes for every
// message kind named in the room actor's specification.
package roommsg

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Kind tags a Message's payload. Values are the camelCase wire tags.
type Kind string

const (
	KindJoin                     Kind = "join"
	KindJoined                   Kind = "joined"
	KindJoinBot                  Kind = "joinBot"
	KindViewerJoined             Kind = "viewerJoined"
	KindWaitingForPlayers        Kind = "waitingForPlayers"
	KindGetCards                 Kind = "getCards"
	KindReceiveCards             Kind = "receiveCards"
	KindReplaceCards             Kind = "replaceCards"
	KindNewHand                  Kind = "newHand"
	KindStartHand                Kind = "startHand"
	KindNextPlayerToReplaceCards Kind = "nextPlayerToReplaceCards"
	KindNextPlayerToPlay         Kind = "nextPlayerToPlay"
	KindUpdateStackAndScore      Kind = "updateStackAndScore"
	KindEnd                      Kind = "end"
	KindPlayerError              Kind = "playerError"
	KindPlay                     Kind = "play"
	KindTimedOut                 Kind = "timedOut"
	KindGetCurrentState          Kind = "getCurrentState"
	KindState                    Kind = "state"

	// KindPlayBotFallback and KindReplaceCardsBotFallback are actor-internal
	// signals published by a Timeout Supervisor when a turn expires. They
	// are always peer-to-peer (FromUserID set, ToUserID nil) and therefore
	// never delivered to a client socket by the bridge's filtering rule;
	// the room actor is their only consumer.
	KindPlayBotFallback          Kind = "internalPlayBotFallback"
	KindReplaceCardsBotFallback  Kind = "internalReplaceCardsBotFallback"
)

// Message is the envelope every frame carries, inbound or outbound.
//
//   - FromUserID == nil means the message is system-originated.
//   - ToUserID == nil means broadcast; otherwise unicast to that user.
//   - ToUserID is never trusted from a client frame: UnmarshalJSON always
//     clears it, matching the wire schema's "deserialisation ignores this"
//     rule. Only the room actor and its supervisors set a real ToUserID,
//     through System.
type Message struct {
	FromUserID *uuid.UUID      `json:"fromUserId"`
	ToUserID   *uuid.UUID      `json:"toUserId"`
	Type       Kind            `json:"msgType"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// messageWire mirrors Message for decoding without the UnmarshalJSON
// recursion that defining it directly on Message would cause.
type messageWire Message

func (m *Message) UnmarshalJSON(data []byte) error {
	var wire messageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*m = Message(wire)
	m.ToUserID = nil // never trust a client-supplied recipient
	return nil
}

// System builds a system-originated message (FromUserID == nil).
func System(toUserID *uuid.UUID, kind Kind, payload any) Message {
	return build(nil, toUserID, kind, payload)
}

// Broadcast builds a system-originated broadcast message.
func Broadcast(kind Kind, payload any) Message {
	return build(nil, nil, kind, payload)
}

// FromUser builds a message as if sent by user (used by bots and by the
// web-socket bridge when stamping an inbound frame).
func FromUser(userID uuid.UUID, kind Kind, payload any) Message {
	return build(&userID, nil, kind, payload)
}

func build(from, to *uuid.UUID, kind Kind, payload any) Message {
	msg := Message{FromUserID: from, ToUserID: to, Type: kind}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			msg.Payload = raw
		}
	}
	return msg
}

// Decode unmarshals msg's payload into v.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// IsSystem reports whether msg originated from the room actor itself.
func (m Message) IsSystem() bool { return m.FromUserID == nil }

// IsBroadcastEligible reports whether a client socket should ever see this
// message: either addressed to exactly one recipient, or a system-wide
// broadcast. Peer-to-peer messages (From set, To nil) are actor-internal
// only and never reach a socket.
func (m Message) IsBroadcastEligible() bool {
	return m.ToUserID != nil || m.IsSystem()
}

// DeliverableTo reports whether msg should be written to userID's socket.
func (m Message) DeliverableTo(userID uuid.UUID) bool {
	if m.ToUserID != nil {
		return *m.ToUserID == userID
	}
	return m.IsSystem()
}
