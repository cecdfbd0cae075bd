package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/repository/ports"
	"github.com/vitae-social/vitae-api/internal/token"
	"github.com/vitae-social/vitae-api/internal/util"
)

// userAccountLookup adapts the user repository to the token validator's
// view of account state.
type userAccountLookup struct {
	users ports.UserRepository
}

func NewAccountLookup(users ports.UserRepository) token.AccountLookup {
	return &userAccountLookup{users: users}
}

func (l *userAccountLookup) AccountByID(ctx context.Context, id string) (*token.Account, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, token.ErrAccountNotFound
	}
	user, err := l.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, token.ErrAccountNotFound
		}
		return nil, err
	}
	return &token.Account{
		ID:         user.ID.String(),
		Email:      user.Email,
		SecureText: util.EncodeSecureText(user.PasswordHash),
		Active:     user.Active,
	}, nil
}
