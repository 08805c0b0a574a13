package shareprediction

type Input struct {
	SessionID  string `json:"sessionId,omitempty"`
	Prediction string `json:"prediction"`
	URL        string `json:"url,omitempty"`
}

type Output struct {
	Shared  bool   `json:"shared"`
	Channel string `json:"channel"`
	Message string `json:"message"`
}
