package dto

// AcceptedResponse acknowledges an action whose outcome arrives asynchronously.
type AcceptedResponse struct {
	Status string `json:"status" example:"accepted"`
}
