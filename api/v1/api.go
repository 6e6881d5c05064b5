package v1

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/epustaka/epustaka/lending"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/middleware"
	"github.com/epustaka/epustaka/store"
	"github.com/epustaka/epustaka/worker"
)

type Handler struct {
	store      *store.Store
	engine     *lending.Engine
	uploadPool worker.WorkPool
	router     *mux.Router
}

func NewHandler(store *store.Store, engine *lending.Engine, uploadPool worker.WorkPool) *Handler {
	return &Handler{
		store:      store,
		engine:     engine,
		uploadPool: uploadPool,
	}
}

func Server(router *mux.Router, handler *Handler) {
	handler.router = router

	sr := router.PathPrefix("/api/v1").Subrouter()
	middleware := middleware.NewMiddleware(handler.store)
	sr.Use(middleware.HandleCORS)
	sr.Use(middleware.LoggingRequest)

	sSetting, err := handler.store.GetOrUpsertSystemSecuritySetting()
	if err != nil {
		log.Error("Error getting security setting", zap.Error(err))
		os.Exit(1)
	}
	sr.Use(NewAuthInterceptor(handler.store, sSetting.JWTSecret).AuthenticationInterceptor)
	sr.Methods(http.MethodOptions)

	sr.HandleFunc("/signup", handler.signUp).Methods(http.MethodPost)
	sr.HandleFunc("/signin", handler.signIn).Methods(http.MethodPost)
	sr.HandleFunc("/user", handler.createUser).Methods(http.MethodPost)
	sr.HandleFunc("/users", handler.listUsers).Methods(http.MethodGet)
	sr.HandleFunc("/user/{id}", handler.archiveUser).Methods(http.MethodDelete)
	sr.HandleFunc("/settings/general", handler.setGeneralSettings).Methods(http.MethodPost)

	sr.HandleFunc("/books", handler.listBooks).Methods(http.MethodGet)
	sr.HandleFunc("/book", handler.addBook).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}", handler.getBook).Methods(http.MethodGet)
	sr.HandleFunc("/book/{id}", handler.updateBook).Methods(http.MethodPatch)
	sr.HandleFunc("/book/{id}", handler.deleteBook).Methods(http.MethodDelete)
	sr.HandleFunc("/book/{id}/ebook", handler.uploadEbook).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/cover", handler.uploadCover).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/content", handler.getContent).Methods(http.MethodGet)
	sr.HandleFunc("/covers/{id}", handler.getCover).Methods(http.MethodGet)

	sr.HandleFunc("/loans", handler.requestLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans", handler.listLoans).Methods(http.MethodGet)
	sr.HandleFunc("/loans/manual", handler.createManualLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans/{id}/approve", handler.approveLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans/{id}/decline", handler.declineLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans/{id}/complete", handler.completeLoan).Methods(http.MethodPost)
	sr.HandleFunc("/loans/{id}", handler.deleteLoan).Methods(http.MethodDelete)

	sr.HandleFunc("/book/{id}/reviews", handler.listReviews).Methods(http.MethodGet)
	sr.HandleFunc("/book/{id}/reviews", handler.upsertReview).Methods(http.MethodPost)
	sr.HandleFunc("/book/{id}/reviews/summary", handler.getReviewSummary).Methods(http.MethodGet)
	sr.HandleFunc("/reviews/{id}", handler.deleteReview).Methods(http.MethodDelete)
}
