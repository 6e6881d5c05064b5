package v1

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/epustaka/epustaka/http/request"
	"github.com/epustaka/epustaka/http/response"
	"github.com/epustaka/epustaka/log"
	"github.com/epustaka/epustaka/model"
	"github.com/epustaka/epustaka/validator"
)

// createUser is the back-office way to add accounts while signup is
// disabled, it can also mint extra admins.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var create model.UserCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&create); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}
	if err := validator.ValidateUserCreateRequest(h.store, &create); err != nil {
		log.Error("Failed to validate user", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(create.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to generate password hash", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	role := model.RoleMember
	if create.IsAdmin {
		role = model.RoleAdmin
	}

	user := model.User{
		Username:     create.Username,
		Email:        create.Email,
		Nickname:     create.Nickname,
		PasswordHash: string(passwordHash),
		Role:         role,
	}
	newUser, err := h.store.CreateUser(&user)
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	h.store.UserCache.Store(newUser.ID, newUser)

	response.Created(w, r, response.UserResponse(newUser))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(&model.FindUser{})
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	list := make([]*response.User, 0, len(users))
	for _, user := range users {
		list = append(list, response.UserResponse(user))
	}
	response.OK(w, r, list)
}

// archiveUser retires an account without deleting its loan history. An
// archived user can no longer authenticate.
func (h *Handler) archiveUser(w http.ResponseWriter, r *http.Request) {
	userID := request.RouteInt32Param(r, "id")
	if request.GetUserID(r) == userID {
		response.BadRequest(w, r, errors.New("cannot archive your own account"))
		return
	}

	user, err := h.store.GetUser(&model.FindUser{ID: &userID})
	if err != nil {
		log.Error("Failed to get user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if user == nil {
		response.NotFound(w, r)
		return
	}

	if err := h.store.ArchiveUser(userID); err != nil {
		log.Error("Failed to archive user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, true)
}
