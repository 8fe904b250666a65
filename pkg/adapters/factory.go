package adapters

import (
	"fmt"

	"github.com/lionscraft/docpythia/pkg/config"
)

// New constructs the Adapter implementation for a stream's adapter_type.
// This is the only place a new adapter kind needs wiring in; the Stream
// Manager (C6) never switches on adapter type itself.
func New(kind config.AdapterType, tenantID, streamID string, sink *Sink) (Adapter, error) {
	switch kind {
	case config.AdapterTypeFileDrop:
		return NewFileDrop(tenantID, streamID, sink), nil
	case config.AdapterTypePollableChat:
		return NewPollableChat(tenantID, streamID, sink), nil
	case config.AdapterTypeBotPushChat:
		return NewBotPushChat(tenantID, streamID, sink), nil
	default:
		return nil, fmt.Errorf("adapters: unknown adapter type %q", kind)
	}
}

// IsPushBased reports whether an adapter kind delivers messages via a
// push/long-poll mechanism started in Initialize rather than a pull cycle
// the Stream Manager's scheduler should invoke Run for.
func IsPushBased(kind config.AdapterType) bool {
	return kind == config.AdapterTypeBotPushChat
}
