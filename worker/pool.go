package worker

import (
	"github.com/epustaka/epustaka/model"
)

// WorkPool accepts jobs for background processing.
type WorkPool interface {
	Push(job model.Job)
}
