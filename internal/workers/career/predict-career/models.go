package predictcareer

type Input struct {
	SessionID string                 `json:"sessionId"`
	Form      map[string]interface{} `json:"form"`
}

type Output struct {
	SubmissionID string `json:"submissionId"`
	Prediction   string `json:"prediction"`
	Status       string `json:"status"`
	DurationMs   int64  `json:"durationMs"`
}
