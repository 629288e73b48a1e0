package dto

// UploadRowError pinpoints one rejected row in a bulk CSV upload. Row
// numbers include the header line, so the first data row is 2.
type UploadRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// UploadResultResponse reports the aggregate outcome of a direct bulk upload.
type UploadResultResponse struct {
	Message      string           `json:"message"`
	SuccessCount int64            `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Errors       []UploadRowError `json:"errors"`
}
