package service

import (
	"context"
	"strings"

	"github.com/vitae-social/vitae-api/internal/domain"
	"github.com/vitae-social/vitae-api/internal/pagination"
	"github.com/vitae-social/vitae-api/internal/repository/ports"
)

type SearchService struct {
	posts       ports.PostRepository
	users       ports.UserRepository
	postCards   *PostService
	connections *ConnectionService
}

func NewSearchService(posts ports.PostRepository, users ports.UserRepository, postCards *PostService, connections *ConnectionService) *SearchService {
	return &SearchService{
		posts:       posts,
		users:       users,
		postCards:   postCards,
		connections: connections,
	}
}

// Posts searches post titles and quote text.
func (s *SearchService) Posts(ctx context.Context, query string, viewer *domain.User, span int, after, before string) ([]domain.PostCard, error) {
	sanitized := sanitizeQuery(query)
	if sanitized == "" {
		return []domain.PostCard{}, nil
	}
	posts, err := s.posts.Search(ctx, sanitized)
	if err != nil {
		return nil, err
	}
	page := pagination.Paginate(posts, span, after, before, true, func(p domain.Post) string {
		return p.ID.String()
	})
	return s.postCards.buildCards(ctx, page, viewer)
}

// People searches user names and bios.
func (s *SearchService) People(ctx context.Context, query string, viewer *domain.User, span int, after, before string) ([]domain.UserCard, error) {
	sanitized := sanitizeQuery(query)
	if sanitized == "" {
		return []domain.UserCard{}, nil
	}
	users, err := s.users.Search(ctx, sanitized)
	if err != nil {
		return nil, err
	}
	page := pagination.Paginate(users, span, after, before, true, func(u domain.User) string {
		return u.ID.String()
	})

	cards := make([]domain.UserCard, 0, len(page))
	for _, user := range page {
		isFollowing := false
		if viewer != nil && viewer.ID != user.ID {
			if _, err := s.connections.follows.Find(ctx, viewer.ID, user.ID); err == nil {
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

// sanitizeQuery strips quoting characters and collapses whitespace so the
// text can be handed to plainto_tsquery as-is.
func sanitizeQuery(query string) string {
	cleaned := strings.NewReplacer(`"`, " ", "'", " ", "`", " ").Replace(query)
	return strings.Join(strings.Fields(cleaned), " ")
}
