package v1

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/http/request"
	"github.com/epustaka/epustaka/http/response"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
	"github.com/epustaka/epustaka/util"
	"github.com/epustaka/epustaka/validator"
)

func (h *Handler) listBooks(w http.ResponseWriter, r *http.Request) {
	find := &model.FindBook{}
	if title := request.QueryStringParam(r, "title", ""); title != "" {
		find.Title = &title
	}
	if author := request.QueryStringParam(r, "author", ""); author != "" {
		find.Author = &author
	}

	books, err := h.store.ListBooks(find)
	if err != nil {
		log.Error("Error listing books", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, response.BookListResponse(books))
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt32Param(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		log.Error("Failed to get book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, response.BookResponse(book))
}

func (h *Handler) addBook(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsAdmin() {
		response.Forbidden(w, r)
		return
	}

	var create model.BookCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateBookCreateRequest(&create); err != nil {
		log.Error("Failed to validate book", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	book := &model.Book{
		Title:    create.Title,
		Author:   create.Author,
		Slug:     util.Slugify(create.Title),
		Licenses: create.Licenses,
	}
	newBook, err := h.store.AddBook(book)
	if err != nil {
		log.Error("Failed to add book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	h.store.BookCache.Store(newBook.ID, newBook)

	response.Created(w, r, response.BookResponse(newBook))
}

func (h *Handler) updateBook(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsAdmin() {
		response.Forbidden(w, r)
		return
	}

	bookID := request.RouteInt32Param(r, "id")
	var update model.BookUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateBookUpdateRequest(&update); err != nil {
		log.Error("Failed to validate update", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	book, err := h.store.UpdateBook(bookID, &update)
	if err != nil {
		log.Error("Failed to update book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}
	response.OK(w, r, response.BookResponse(book))
}

func (h *Handler) deleteBook(w http.ResponseWriter, r *http.Request) {
	if !request.GetUserRole(r).IsAdmin() {
		response.Forbidden(w, r)
		return
	}

	bookID := request.RouteInt32Param(r, "id")
	log.Debug("Deleting book", zap.Int32("book_id", bookID),
		zap.Int32("user_id", request.GetUserID(r)))

	if err := h.store.RemoveBook(bookID); err != nil {
		log.Error("Failed to delete book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	h.store.BookCache.Delete(bookID)

	response.NoContent(w, r)
}

// uploadEbook queues the uploaded file for ingestion, metadata backfill
// happens in the worker.
func (h *Handler) uploadEbook(w http.ResponseWriter, r *http.Request) {
	h.uploadFile(w, r, model.JobTypeEbookUpload)
}

func (h *Handler) uploadCover(w http.ResponseWriter, r *http.Request) {
	h.uploadFile(w, r, model.JobTypeCoverUpload)
}

func (h *Handler) uploadFile(w http.ResponseWriter, r *http.Request, jobType string) {
	if !request.GetUserRole(r).IsAdmin() {
		response.Forbidden(w, r)
		return
	}

	bookID := request.RouteInt32Param(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		log.Error("Failed to get book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if book == nil {
		response.NotFound(w, r)
		return
	}

	if err := r.ParseMultipartForm(config.Opts.MaxUploadSize << 20); err != nil {
		log.Error("Max upload size exceeded", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		response.BadRequest(w, r, errors.New("exactly one file is required"))
		return
	}

	fileBase := filepath.Base(files[0].Filename)
	job := model.Job{
		UserID: int(request.GetUserID(r)),
		BookID: bookID,
		Path:   filepath.Join(config.Opts.Data, "books", book.Slug, fileBase),
		Type:   jobType,
		Status: model.JobStatusPending,
		Item:   files[0],
	}
	go h.uploadPool.Push(job)

	response.Accepted(w, r)
}

func (h *Handler) getCover(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt32Param(r, "id")
	book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		log.Error("Failed to get book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if book == nil || book.CoverPath == "" {
		response.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, book.CoverPath)
}

// getContent streams the ebook. Members only get through while they hold an
// active, unexpired loan, admins always do.
func (h *Handler) getContent(w http.ResponseWriter, r *http.Request) {
	bookID := request.RouteInt32Param(r, "id")
	user := &model.User{ID: request.GetUserID(r), Role: request.GetUserRole(r)}

	granted, err := h.engine.CheckAccess(user, bookID)
	if err != nil {
		log.Error("Failed to check access", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if !granted {
		log.Debug("Content access denied",
			zap.Int32("book_id", bookID),
			zap.Int32("member_id", user.ID))
		response.Forbidden(w, r)
		return
	}

	book, err := h.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		log.Error("Failed to get book", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if book == nil || book.EbookPath == "" {
		response.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/epub+zip")
	http.ServeFile(w, r, book.EbookPath)
}
