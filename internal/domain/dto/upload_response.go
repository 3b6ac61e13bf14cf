package dto

// Upload status values returned by POST /api/trades/upload.
const (
	UploadStatusOK    = "ok"
	UploadStatusError = "error"
)

// UploadResponse is the body of the import endpoint.
//
// Status is "ok" on success; anything else is a failure, optionally
// explained by Message. Imported and Skipped are informational counters.
type UploadResponse struct {
	Status   string `json:"status" example:"ok"`
	Message  string `json:"message,omitempty" example:"bad format"`
	Imported int    `json:"imported,omitempty" example:"12"`
	Skipped  int    `json:"skipped,omitempty" example:"3"`
}

// OK reports whether the server accepted the import.
func (r UploadResponse) OK() bool {
	return r.Status == UploadStatusOK
}
