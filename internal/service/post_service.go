package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
	"github.com/vitae-social/vitae-api/internal/pagination"
	"github.com/vitae-social/vitae-api/internal/repository/ports"
)

const (
	maxPostTitleLength = 256
	feedPerAuthorCap   = 20
	exploreCandidates  = 48
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("post belongs to another user")
	ErrInvalidTitle = errors.New("title must be between 1 and 256 characters")
	ErrInvalidQuote = errors.New("each quote must be longer than 1 character")
)

// PopularityRanker scores posts by recent view activity. A nil ranker
// degrades Explore to like-count ordering.
type PopularityRanker interface {
	PopularityByPost(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type PostService struct {
	posts    ports.PostRepository
	users    ports.UserRepository
	comments ports.CommentRepository
	likes    ports.LikeRepository
	follows  ports.FollowRepository
	ranker   PopularityRanker
}

func NewPostService(
	posts ports.PostRepository,
	users ports.UserRepository,
	comments ports.CommentRepository,
	likes ports.LikeRepository,
	follows ports.FollowRepository,
	ranker PopularityRanker,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		comments: comments,
		likes:    likes,
		follows:  follows,
		ranker:   ranker,
	}
}

func (s *PostService) Get(ctx context.Context, postID uuid.UUID, viewer *domain.User) (*domain.PostCard, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	cards, err := s.buildCards(ctx, []domain.Post{*post}, viewer)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func (s *PostService) Create(ctx context.Context, user *domain.User, title string, quotes []string) (*domain.PostCard, error) {
	title, quotes, err := validatePostContent(title, quotes)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.Create(ctx, &domain.Post{
		ID:     uuid.New(),
		UserID: user.ID,
		Title:  title,
		Quotes: quotes,
	})
	if err != nil {
		return nil, err
	}
	cards, err := s.buildCards(ctx, []domain.Post{*post}, user)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func (s *PostService) Update(ctx context.Context, user *domain.User, postID uuid.UUID, title string, quotes []string) (*domain.PostCard, error) {
	title, quotes, err := validatePostContent(title, quotes)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, postID, user.ID); err != nil {
		return nil, err
	}
	post, err := s.posts.Update(ctx, postID, user.ID, title, quotes)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	cards, err := s.buildCards(ctx, []domain.Post{*post}, user)
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func (s *PostService) Delete(ctx context.Context, user *domain.User, postID uuid.UUID) error {
	if err := s.requireOwner(ctx, postID, user.ID); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID, user.ID)
}

// ToggleLike flips the viewer's like on a post and reports the new state.
func (s *PostService) ToggleLike(ctx context.Context, user *domain.User, postID uuid.UUID) (bool, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if isNotFound(err) {
			return false, ErrPostNotFound
		}
		return false, err
	}

	_, err := s.likes.Find(ctx, user.ID, postID)
	switch {
	case err == nil:
		if err := s.likes.Remove(ctx, user.ID, postID); err != nil {
			return false, err
		}
		return false, nil
	case isNotFound(err):
		if _, err := s.likes.Add(ctx, user.ID, postID); err != nil {
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

// UserPosts pages through a user's posts, most recent first.
func (s *PostService) UserPosts(ctx context.Context, userID uuid.UUID, viewer *domain.User, span int, after, before string) ([]domain.PostCard, error) {
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.window(ctx, posts, viewer, span, after, before, true)
}

// LikedPosts pages through posts the user liked, oldest first; without an
// anchor the window lands on the most recent likes at the tail.
func (s *PostService) LikedPosts(ctx context.Context, userID uuid.UUID, viewer *domain.User, span int, after, before string) ([]domain.PostCard, error) {
	posts, err := s.posts.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.window(ctx, posts, viewer, span, after, before, false)
}

// Feed pages through posts by the user and the authors they follow, most
// recent first, with a per-author cap to keep any one author from flooding
// the feed.
func (s *PostService) Feed(ctx context.Context, user *domain.User, span int, after, before string) ([]domain.PostCard, error) {
	followings, err := s.follows.ListFollowings(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	authors := make([]uuid.UUID, 0, len(followings)+1)
	authors = append(authors, user.ID)
	for _, f := range followings {
		authors = append(authors, f.FollowingID)
	}

	posts, err := s.posts.ListByAuthors(ctx, authors, feedPerAuthorCap)
	if err != nil {
		return nil, err
	}
	return s.window(ctx, posts, user, span, after, before, true)
}

// Explore pages through posts from authors the viewer does not follow,
// ranked by recent view activity and then by like count.
func (s *PostService) Explore(ctx context.Context, viewer *domain.User, span int, after, before string) ([]domain.PostCard, error) {
	var excluded []uuid.UUID
	if viewer != nil {
		followings, err := s.follows.ListFollowings(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		excluded = append(excluded, viewer.ID)
		for _, f := range followings {
			excluded = append(excluded, f.FollowingID)
		}
	}

	posts, err := s.posts.ListExcludingAuthors(ctx, excluded, exploreCandidates)
	if err != nil {
		return nil, err
	}
	ranked, err := s.rank(ctx, posts)
	if err != nil {
		return nil, err
	}
	return s.window(ctx, ranked, viewer, span, after, before, true)
}

func (s *PostService) rank(ctx context.Context, posts []domain.Post) ([]domain.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	views := map[uuid.UUID]int{}
	if s.ranker != nil {
		var err error
		views, err = s.ranker.PopularityByPost(ctx, ids)
		if err != nil {
			// Explore still works when the stats backend is down.
			log.Printf("post: popularity ranking unavailable: %v", err)
			views = map[uuid.UUID]int{}
		}
	}

	likeCounts := make(map[uuid.UUID]int, len(posts))
	for _, p := range posts {
		count, err := s.likes.CountByPost(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		likeCounts[p.ID] = count
	}

	ranked := make([]domain.Post, len(posts))
	copy(ranked, posts)
	sort.SliceStable(ranked, func(i, j int) bool {
		if views[ranked[i].ID] != views[ranked[j].ID] {
			return views[ranked[i].ID] > views[ranked[j].ID]
		}
		return likeCounts[ranked[i].ID] > likeCounts[ranked[j].ID]
	})
	return ranked, nil
}

func (s *PostService) window(ctx context.Context, posts []domain.Post, viewer *domain.User, span int, after, before string, preferHead bool) ([]domain.PostCard, error) {
	page := pagination.Paginate(posts, span, after, before, preferHead, func(p domain.Post) string {
		return p.ID.String()
	})
	return s.buildCards(ctx, page, viewer)
}

func (s *PostService) buildCards(ctx context.Context, posts []domain.Post, viewer *domain.User) ([]domain.PostCard, error) {
	cards := make([]domain.PostCard, 0, len(posts))
	authorCache := make(map[uuid.UUID]domain.UserCard)

	for _, post := range posts {
		author, ok := authorCache[post.UserID]
		if !ok {
			user, err := s.users.FindByID(ctx, post.UserID)
			if err != nil {
				return nil, err
			}
			author = domain.UserCard{
				ID:               user.ID,
				Name:             user.Name,
				ProfilePictureID: user.ProfilePictureID,
			}
			authorCache[post.UserID] = author
		}

		commentsCount, err := s.comments.CountTopLevelByPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		likesCount, err := s.likes.CountByPost(ctx, post.ID)
		if err != nil {
			return nil, err
		}

		isLiked := false
		if viewer != nil {
			if _, err := s.likes.Find(ctx, viewer.ID, post.ID); err == nil {
				isLiked = true
			} else if !isNotFound(err) {
				return nil, err
			}
		}

		cards = append(cards, domain.PostCard{
			ID:            post.ID,
			Author:        author,
			Title:         post.Title,
			Quotes:        post.Quotes,
			PublishedOn:   post.CreatedOn,
			CommentsCount: commentsCount,
			LikesCount:    likesCount,
			IsLiked:       isLiked,
		})
	}
	return cards, nil
}

func (s *PostService) requireOwner(ctx context.Context, postID, userID uuid.UUID) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return ErrPostNotFound
		}
		return err
	}
	if post.UserID != userID {
		return ErrNotPostOwner
	}
	return nil
}

func validatePostContent(title string, quotes []string) (string, []string, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxPostTitleLength {
		return "", nil, ErrInvalidTitle
	}
	if len(quotes) == 0 {
		return "", nil, ErrInvalidQuote
	}
	cleaned := make([]string, 0, len(quotes))
	for _, q := range quotes {
		q = strings.TrimSpace(q)
		if len(q) <= 1 {
			return "", nil, ErrInvalidQuote
		}
		cleaned = append(cleaned, q)
	}
	return title, cleaned, nil
}
