package worker // import "github.com/epustaka/epustaka/worker"

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/epustaka/epustaka/config"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
	"github.com/epustaka/epustaka/store"
	"github.com/epustaka/epustaka/util"
	"github.com/epustaka/epustaka/util/parsers/epub"
	"go.uber.org/zap"
)

const coverQuality = 75

// UploadPool handles ebook and cover ingestion in the background so the
// upload request can return as soon as the file is queued.
type UploadPool struct {
	queue chan model.Job
}

func NewUploadPool(store *store.Store, size int) *UploadPool {
	pool := &UploadPool{
		queue: make(chan model.Job),
	}

	for i := 0; i < size; i++ {
		worker := &UploadWorker{id: i, store: store}
		go worker.Run(pool.queue)
	}

	return pool
}

// Push implements WorkPool.
func (p *UploadPool) Push(job model.Job) {
	p.queue <- job
}

type UploadWorker struct {
	id    int
	store *store.Store
}

func (w *UploadWorker) Run(c <-chan model.Job) {
	log.Debug("Upload worker is running", zap.Int("worker_id", w.id))

	for {
		job := <-c

		log.Debug("Job received by worker",
			zap.Int("worker_id", w.id),
			zap.Int("user_id", job.UserID),
			zap.Int32("book_id", job.BookID),
			zap.String("type", job.Type))

		job.Status = model.JobStatusRunning
		tracked, err := w.store.AddJob(job)
		if err != nil {
			log.Error("Error recording job", zap.Error(err))
			continue
		}

		switch job.Type {
		case model.JobTypeEbookUpload:
			err = w.handleEbook(job)
		case model.JobTypeCoverUpload:
			err = w.handleCover(job)
		default:
			log.Error("Unknown job type", zap.String("type", job.Type))
			continue
		}

		status := model.JobStatusDone
		if err != nil {
			log.Error("Job failed",
				zap.Int("job_id", tracked.ID),
				zap.String("type", job.Type),
				zap.Error(err))
			status = model.JobStatusFailed
		}
		if err := w.store.SetJobStatus(tracked.ID, status); err != nil {
			log.Error("Error updating job status", zap.Error(err))
		}
	}
}

// handleEbook saves the uploaded file, then backfills the catalog entry
// with the metadata found inside the epub.
func (w *UploadWorker) handleEbook(job model.Job) error {
	if err := saveUpload(job.Item.(*multipart.FileHeader), job.Path, true); err != nil {
		return err
	}

	coverPath := extractCover(job.Path)

	ebookPath := job.Path
	if err := w.store.SetBookFiles(job.BookID, &ebookPath, coverPath); err != nil {
		return err
	}

	return w.backfillMetadata(job.BookID, job.Path)
}

// handleCover saves an explicitly uploaded cover, replacing any cover
// extracted from the ebook.
func (w *UploadWorker) handleCover(job model.Job) error {
	if err := saveUpload(job.Item.(*multipart.FileHeader), job.Path, false); err != nil {
		return err
	}

	coverPath := job.Path
	if webpPath := util.ImageToWebp(job.Path, coverQuality); webpPath != "" {
		coverPath = webpPath
	}
	return w.store.SetBookFiles(job.BookID, nil, &coverPath)
}

func (w *UploadWorker) backfillMetadata(bookID int32, path string) error {
	book, err := epub.Open(path)
	if err != nil {
		return err
	}
	defer book.Close()

	current, err := w.store.GetBook(&model.FindBook{ID: &bookID})
	if err != nil {
		return err
	}

	update := &model.BookUpdateRequest{}
	if title := book.GetTitle(); title != "" && current.Title == "" {
		update.Title = &title
	}
	if author := book.GetAuthor(); author != "" && current.Author == "" {
		update.Author = &author
	}
	if update.Title == nil && update.Author == nil {
		return nil
	}

	log.Debug("Backfilling book metadata from epub",
		zap.Int32("book_id", bookID),
		zap.String("title", book.GetTitle()),
		zap.String("author", book.GetAuthor()))

	_, err = w.store.UpdateBook(bookID, update)
	return err
}

// extractCover pulls the cover image out of the epub next to it and
// converts it to webp. Returns nil when the book has no cover.
func extractCover(bookPath string) *string {
	book, err := epub.Open(bookPath)
	if err != nil {
		log.Error("Error opening epub for cover", zap.Error(err))
		return nil
	}
	defer book.Close()

	cover, err := book.GetCover(filepath.Dir(bookPath))
	if err != nil || cover == "" {
		return nil
	}

	if webpPath := util.ImageToWebp(cover, coverQuality); webpPath != "" {
		cover = webpPath
	}
	return &cover
}

func saveUpload(fileHeader *multipart.FileHeader, dest string, checkType bool) error {
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	if checkType {
		buff := make([]byte, 512)
		n, err := file.Read(buff)
		if err != nil && err != io.EOF {
			return err
		}
		fileType := http.DetectContentType(buff[:n])
		if !config.CheckSupportedTypes(fileType) {
			return errors.Errorf("unsupported file type: %s", fileType)
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return err
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, file)
	return err
}
