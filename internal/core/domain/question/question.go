package question

// AskRequest is the inbound payload for the question endpoint.
type AskRequest struct {
	Question string `json:"question"`
}

// Answer is the success envelope returned by the question endpoint.
// Remaining reflects the caller's rate-limit quota after this request.
type Answer struct {
	Answer    string `json:"answer"`
	Question  string `json:"question"`
	Remaining int    `json:"remaining"`
	RequestID string `json:"request_id"`
}
