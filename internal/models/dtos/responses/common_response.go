package responses

// APIResponse is the envelope every handler writes. Listing endpoints fill
// Total/Source/Cached; failures set Success=false with a Message.
type APIResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message,omitempty"`
	Data         interface{} `json:"data,omitempty"`
	Total        *int        `json:"total,omitempty"`
	Country      string      `json:"country,omitempty"`
	Source       string      `json:"source,omitempty"`
	Cached       *bool       `json:"cached,omitempty"`
	Degraded     bool        `json:"degraded,omitempty"`
	Error        string      `json:"error,omitempty"`
	ResponseTime string      `json:"responseTime,omitempty"`
}
