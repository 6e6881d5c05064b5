package model

const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

const (
	JobTypeEbookUpload = "ebook_upload"
	JobTypeCoverUpload = "cover_upload"
)

// Job is one ingest task handed to the worker pool. Item carries the
// in-flight payload (a *multipart.FileHeader for uploads) and is not
// persisted.
type Job struct {
	ID     int
	UserID int
	BookID int32
	Path   string
	Type   string
	Status string
	Item   interface{}
}
