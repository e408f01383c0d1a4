package spotify

// playRequest is the body of PUT /me/player/play.
type playRequest struct {
	URIs []string `json:"uris"`
}

// apiErrorResponse is the Web API error envelope.
type apiErrorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Reason  string `json:"reason,omitempty"`
	} `json:"error"`
}
