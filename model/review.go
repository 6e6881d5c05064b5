package model

// Review is a member's rating of a book, at most one per (member, book)
// pair. Writes go through an upsert.
type Review struct {
	ID int32 `json:"id"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`

	MemberID int32  `json:"member_id"`
	BookID   int32  `json:"book_id"`
	Rating   int    `json:"rating"`
	Body     string `json:"body"`
	Member   string `json:"member"`
}

type FindReview struct {
	ID       *int32 `json:"id"`
	MemberID *int32 `json:"member_id"`
	BookID   *int32 `json:"book_id"`
	Limit    *int   `json:"limit"`
}

type ReviewUpsertRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// ReviewSummary is the aggregate shown next to availability on the catalog.
type ReviewSummary struct {
	BookID  int32   `json:"book_id"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}
