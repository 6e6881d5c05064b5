package model // import "github.com/epustaka/epustaka/model"

// RowStatus is the status of a row.
type RowStatus string

const (
	// Normal is the NORMAL row status.
	Normal RowStatus = "NORMAL"
	// Archived is the ARCHIVED row status.
	Archived RowStatus = "ARCHIVED"
)

func (e RowStatus) String() string {
	switch e {
	case Normal:
		return "NORMAL"
	case Archived:
		return "ARCHIVED"
	}
	return ""
}
