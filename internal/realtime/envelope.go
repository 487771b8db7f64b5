package realtime

import "encoding/json"

// System to operator message types.
const (
	TypeLiveWeight        = "LIVE_WEIGHT_UPDATE"
	TypePendingList       = "PENDING_LIST_UPDATE"
	TypeCompletedList     = "COMPLETED_LIST_UPDATE"
	TypeGateAlert         = "cj_ALERT" // type names the operator pages already listen for
	TypePermitAlert       = "USER_ALERT_PERMIT"
	TypeAdminActionResult = "ADMIN_ACTION_RESULT"
	TypeSearchPending     = "SEARCH_RESULT_PENDING"
	TypeSearchCompleted   = "SEARCH_RESULT_COMPLETED"
	TypeSearchNotFound    = "SEARCH_NOT_FOUND"
	TypePortChangeResult  = "PORT_CHANGE_RESULT"
	TypeCommandError      = "COMMAND_ERROR"
)

// Message is an outbound envelope. Alerts carry Message instead of Payload.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Message string `json:"message,omitempty"`
}

// Inbound is an operator command envelope; Payload is decoded per type by the gateway.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type completedListPayload struct {
	Date    string         `json:"date"`
	Records []CompletedDTO `json:"records"`
}

type permitPayload struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

type commandErrorPayload struct {
	Command string `json:"command"`
	Error   string `json:"error"`
}
