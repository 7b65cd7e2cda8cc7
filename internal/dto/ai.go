package dto

// AIInsightsRequest asks for AI insights over one school period. School is
// optional for district roles; regular users are pinned to their own school.
type AIInsightsRequest struct {
	SchoolID *int64 `json:"school_id,omitempty"`
	Year     int    `json:"year" validate:"required"`
	Month    int    `json:"month" validate:"required,min=1,max=12"`
}

// AIInsightsResponse carries the generated insight text.
type AIInsightsResponse struct {
	Insights   string `json:"insights"`
	SchoolName string `json:"school_name"`
	Period     string `json:"period"`
	Cached     bool   `json:"cached"`
}

// ChatMessage is one turn of an AI conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// ChatRequest continues a financial-assistant conversation.
type ChatRequest struct {
	Message             string        `json:"message" validate:"required"`
	SchoolID            *int64        `json:"school_id,omitempty"`
	ConversationHistory []ChatMessage `json:"conversation_history,omitempty"`
}

// ChatResponse returns the assistant reply.
type ChatResponse struct {
	Response   string `json:"response"`
	SchoolName string `json:"school_name"`
}
