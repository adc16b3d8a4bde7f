package apiclient

import (
	"encoding/json"
	"fmt"
)

// Remote chat endpoints.
const (
	PathChatbot  = "/api/chatbot"
	PathNLPToSQL = "/api/nlp-to-sql"
)

// Prompt is the request body of both chat endpoints.
type Prompt struct {
	Prompt string `json:"prompt"`
}

// replyBody is the shape shared by both chat endpoints. success is kept raw
// because the API is loose about its type.
type replyBody struct {
	Success any     `json:"success"`
	Message *string `json:"message"`
}

// truthy applies JavaScript truthiness to a decoded JSON value.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// FinanceReply decodes an /api/nlp-to-sql response. Only the truthiness of
// the success field is read; a missing field counts as failure.
func FinanceReply(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}
	var body replyBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return truthy(body.Success), nil
}

// ChatbotReply decodes an /api/chatbot response, which needs a truthy
// success and a string message.
func ChatbotReply(raw json.RawMessage) (string, error) {
	var body replyBody
	if len(raw) == 0 || json.Unmarshal(raw, &body) != nil || !truthy(body.Success) || body.Message == nil {
		return "", ErrMalformedResponse
	}
	return *body.Message, nil
}
