package bridge

import "github.com/bytedance/sonic"

// Message types exchanged across the isolation boundary.
const (
	TypeFetchRequest  = "FETCH_REQUEST"
	TypeFetchResponse = "FETCH_RESPONSE"
)

// Message is the single envelope for both directions. Requests carry Type,
// Path, RequestID and Source; responses carry Type, RequestID, Content,
// Status, Headers and Source.
type Message struct {
	Type      string            `json:"type"`
	Path      string            `json:"path,omitempty"`
	RequestID string            `json:"requestId"`
	Content   string            `json:"content,omitempty"`
	Status    int               `json:"status,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Source    string            `json:"source,omitempty"`
}

// Encode serializes a message for transports that need bytes.
func Encode(m Message) ([]byte, error) {
	return sonic.Marshal(m)
}

// Decode parses a message from bytes.
func Decode(raw []byte) (Message, error) {
	var m Message
	err := sonic.Unmarshal(raw, &m)
	return m, err
}

// Response is what a settled fetch resolves with.
type Response struct {
	Status  int
	Headers map[string]string
	Body    string
}
