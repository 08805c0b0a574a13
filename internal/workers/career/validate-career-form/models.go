package validatecareerform

type Input struct {
	SessionID string                 `json:"sessionId,omitempty"`
	Form      map[string]interface{} `json:"form"`
}

type Output struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}
