package model

// Book is one catalog entry. Licenses is the number of concurrent borrows
// the book supports, Borrowed counts the active ones. Borrowed is only ever
// written through the lending engine's transitions.
type Book struct {
	ID int32 `json:"id"`

	RowStatus RowStatus `json:"row_status"`
	CreatedTs int64     `json:"created_ts"`
	UpdatedTs int64     `json:"updated_ts"`

	Title    string `json:"title"`
	Author   string `json:"author"`
	Slug     string `json:"slug"`
	Licenses int    `json:"licenses"`
	Borrowed int    `json:"borrowed"`
	// EbookPath and CoverPath are filesystem paths filled in by the
	// ingest workers, empty until an upload finished.
	EbookPath string `json:"ebook_path"`
	CoverPath string `json:"cover_path"`
}

// Availability is licenses minus borrowed, floored at zero. The clamp only
// protects the displayed value if the counters ever diverge, it does not
// repair them.
func (b *Book) Availability() int {
	available := b.Licenses - b.Borrowed
	if available < 0 {
		return 0
	}
	return available
}

type FindBook struct {
	ID      *int32  `json:"id"`
	Title   *string `json:"title"`
	Author  *string `json:"author"`
	Slug    *string `json:"slug"`
	OrderBy *string `json:"order_by"`

	// Random and limit are used in list books.
	// Whether to return random books.
	Random bool `json:"random"`
	// The maximum number of books to return.
	Limit *int `json:"limit"`
}

type BookCreateRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Licenses int    `json:"licenses"`
}

type BookUpdateRequest struct {
	Title    *string `json:"title"`
	Author   *string `json:"author"`
	Licenses *int    `json:"licenses"`
}
