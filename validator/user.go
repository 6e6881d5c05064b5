package validator // import "github.com/epustaka/epustaka/validator"

import (
	"github.com/pkg/errors"

	"github.com/epustaka/epustaka/model"
	"github.com/epustaka/epustaka/store"
	"github.com/epustaka/epustaka/util"
)

func ValidateUserCreateRequest(s *store.Store, user *model.UserCreateRequest) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if err := validateUsername(s, user.Username); err != nil {
		return err
	}
	if user.Email != "" && !util.ValidateEmail(user.Email) {
		return errors.New("email is invalid")
	}
	return validatePassword(user.Password)
}

func ValidateSignupRequest(s *store.Store, user *model.UserSignupRequest) error {
	if user == nil {
		return errors.New("user is nil")
	}
	if err := validateUsername(s, user.Username); err != nil {
		return err
	}
	return validatePassword(user.Password)
}

func validateUsername(s *store.Store, username string) error {
	if username == "" {
		return errors.New("username is empty")
	}
	if !util.UIDMatcher.MatchString(username) {
		return errors.New("username is invalid")
	}
	if user, _ := s.GetUser(&model.FindUser{Username: &username}); user != nil {
		return errors.New("username already exists")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return errors.New("password is empty")
	}
	if len(password) < 6 {
		return errors.New("password is too short")
	}
	return nil
}
