package financeService

import (
	"context"
	"errors"
	"log/slog"

	"github.com/milosmac94/finance/data/repository"
	"github.com/milosmac94/finance/internal/model"
	"github.com/milosmac94/finance/internal/service"
	"github.com/milosmac94/finance/utils"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a user with the configured starting cash and logs them
// straight in, returning a session token.
func (s *FinanceService) Register(ctx context.Context, username, password, confirmation string) (token string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.Register"

	slog.Debug("Register start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("Register finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	if username == "" || password == "" || confirmation == "" {
		return "", service.ErrMissingField
	}

	if password != confirmation {
		return "", service.ErrPasswordMismatch
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	userID, err := s.repo.InsertUser(ctx, username, string(passHash), s.startingCash)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", service.ErrUsernameTaken
		}
		slog.Error("got error from repo.InsertUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	token, err = s.session.CreateSession(ctx, model.Session{UserID: userID, Username: username})
	if err != nil {
		slog.Error("got error from session.CreateSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return token, nil
}

func (s *FinanceService) Login(ctx context.Context, username, password string) (token string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.Login"

	slog.Debug("Login start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("Login finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	if username == "" || password == "" {
		return "", service.ErrMissingField
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", service.ErrInvalidCredentials
		}
		slog.Error("got error from repo.GetUserByUsername", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)) != nil {
		return "", service.ErrInvalidCredentials
	}

	token, err = s.session.CreateSession(ctx, model.Session{UserID: user.UserID, Username: user.Username})
	if err != nil {
		slog.Error("got error from session.CreateSession", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return token, nil
}

func (s *FinanceService) Logout(ctx context.Context, token string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.Logout"

	slog.Debug("Logout start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("Logout finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	return s.session.DeleteSession(ctx, token)
}

// IsUsernameAvailable reports whether a candidate username can still be
// registered. The empty string is never available.
func (s *FinanceService) IsUsernameAvailable(ctx context.Context, username string) (available bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.IsUsernameAvailable"

	slog.Debug("IsUsernameAvailable start", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	defer func() {
		slog.Debug("IsUsernameAvailable finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("username", username))
	}()

	if username == "" {
		return false, nil
	}

	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		slog.Error("got error from repo.UsernameExists", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return false, err
	}

	return !exists, nil
}

// ChangePassword replaces the stored hash after verifying the old password.
// The new password must differ from the current one, checked against the
// stored hash rather than by comparing fresh hashes.
func (s *FinanceService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword, confirmPassword string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FinanceService.ChangePassword"

	slog.Debug("ChangePassword start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	defer func() {
		slog.Debug("ChangePassword finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", userID))
	}()

	if oldPassword == "" || newPassword == "" || confirmPassword == "" {
		return service.ErrMissingField
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetUser", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(oldPassword)) != nil {
		return service.ErrWrongPassword
	}

	if newPassword != confirmPassword {
		return service.ErrPasswordMismatch
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(newPassword)) == nil {
		return service.ErrPasswordUnchanged
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("got error from bcrypt.GenerateFromPassword", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	err = s.repo.UpdateUserPassHash(ctx, userID, string(newHash))
	if err != nil {
		slog.Error("got error from repo.UpdateUserPassHash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
