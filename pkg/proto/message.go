package proto

// Client message types.
const (
	TypeMove = "move"
	TypeSync = "sync"
)

// ClientToServerMessage represents a message from the browser view to the server.
type ClientToServerMessage struct {
	Type  string `json:"type" validate:"required,oneof=move sync"`
	Index *int   `json:"index,omitempty" validate:"required_if=Type move"`
}
