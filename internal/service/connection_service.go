package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
	"github.com/vitae-social/vitae-api/internal/pagination"
	"github.com/vitae-social/vitae-api/internal/repository/ports"
)

var ErrSelfFollow = errors.New("users cannot follow themselves")

type ConnectionService struct {
	follows ports.FollowRepository
	users   ports.UserRepository
}

func NewConnectionService(follows ports.FollowRepository, users ports.UserRepository) *ConnectionService {
	return &ConnectionService{follows: follows, users: users}
}

// ToggleFollow flips the follow edge from the user to the target and
// reports the new state.
func (s *ConnectionService) ToggleFollow(ctx context.Context, user *domain.User, targetID uuid.UUID) (bool, error) {
	if user.ID == targetID {
		return false, ErrSelfFollow
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if isNotFound(err) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	_, err := s.follows.Find(ctx, user.ID, targetID)
	switch {
	case err == nil:
		if err := s.follows.Remove(ctx, user.ID, targetID); err != nil {
			return false, err
		}
		return false, nil
	case isNotFound(err):
		if _, err := s.follows.Add(ctx, user.ID, targetID); err != nil {
			if isUniqueViolation(err) {
				return true, nil
			}
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// Followers pages through the accounts following userID, newest edges
// first.
func (s *ConnectionService) Followers(ctx context.Context, userID uuid.UUID, viewer *domain.User, span int, after, before string) ([]domain.UserCard, error) {
	edges, err := s.follows.ListFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FollowerID)
	}
	return s.window(ctx, ids, viewer, span, after, before, true)
}

// Followings pages through the accounts userID follows. Without an anchor
// the window lands at the tail, where the oldest followings sit.
func (s *ConnectionService) Followings(ctx context.Context, userID uuid.UUID, viewer *domain.User, span int, after, before string) ([]domain.UserCard, error) {
	edges, err := s.follows.ListFollowings(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.FollowingID)
	}
	return s.window(ctx, ids, viewer, span, after, before, false)
}

func (s *ConnectionService) window(ctx context.Context, ids []uuid.UUID, viewer *domain.User, span int, after, before string, preferHead bool) ([]domain.UserCard, error) {
	page := pagination.Paginate(ids, span, after, before, preferHead, func(id uuid.UUID) string {
		return id.String()
	})
	return s.buildCards(ctx, page, viewer)
}

func (s *ConnectionService) buildCards(ctx context.Context, ids []uuid.UUID, viewer *domain.User) ([]domain.UserCard, error) {
	cards := make([]domain.UserCard, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}

		isFollowing := false
		if viewer != nil && viewer.ID != user.ID {
			if _, err := s.follows.Find(ctx, viewer.ID, user.ID); err == nil {
				isFollowing = true
			} else if !isNotFound(err) {
				return nil, err
			}
		}

		cards = append(cards, domain.UserCard{
			ID:               user.ID,
			Name:             user.Name,
			ProfilePictureID: user.ProfilePictureID,
			IsFollowing:      isFollowing,
		})
	}
	return cards, nil
}
