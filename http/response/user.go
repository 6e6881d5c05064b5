package response

import (
	"github.com/epustaka/epustaka/model"
)

// User is the client-facing view of a user, without the password hash.
type User struct {
	ID          int32      `json:"id"`
	Username    string     `json:"username"`
	Role        model.Role `json:"role"`
	Email       string     `json:"email"`
	Nickname    string     `json:"nickname"`
	CreatedTs   int64      `json:"created_ts"`
	LastLoginTs int64      `json:"last_login_ts"`
}

func UserResponse(user *model.User) *User {
	return &User{
		ID:          user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Email:       user.Email,
		Nickname:    user.Nickname,
		CreatedTs:   user.CreatedTs,
		LastLoginTs: user.LastLoginTs,
	}
}

// Book is the client-facing view of a book, with the availability derived
// from the counters.
type Book struct {
	ID           int32  `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Slug         string `json:"slug"`
	Licenses     int    `json:"licenses"`
	Availability int    `json:"availability"`
	HasEbook     bool   `json:"has_ebook"`
	HasCover     bool   `json:"has_cover"`
	CreatedTs    int64  `json:"created_ts"`
}

func BookResponse(book *model.Book) *Book {
	return &Book{
		ID:           book.ID,
		Title:        book.Title,
		Author:       book.Author,
		Slug:         book.Slug,
		Licenses:     book.Licenses,
		Availability: book.Availability(),
		HasEbook:     book.EbookPath != "",
		HasCover:     book.CoverPath != "",
		CreatedTs:    book.CreatedTs,
	}
}

func BookListResponse(books []*model.Book) []*Book {
	list := make([]*Book, 0, len(books))
	for _, book := range books {
		list = append(list, BookResponse(book))
	}
	return list
}
