package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
	"github.com/vitae-social/vitae-api/internal/media"
	"github.com/vitae-social/vitae-api/internal/pagination"
	"github.com/vitae-social/vitae-api/internal/repository/ports"
	"github.com/vitae-social/vitae-api/internal/util"
)

const maxBioLength = 384

var (
	ErrInvalidBio    = errors.New("bio must be at most 384 characters")
	ErrImageTooLarge = errors.New("profile picture exceeds the size limit")
)

type UserService struct {
	users     ports.UserRepository
	posts     ports.PostRepository
	comments  ports.CommentRepository
	likes     ports.LikeRepository
	follows   ports.FollowRepository
	storage   ports.ObjectStorage
	processor media.Processor
	auth      *AuthService

	pictureBucket string
	imageMaxBytes int64
}

func NewUserService(
	users ports.UserRepository,
	posts ports.PostRepository,
	comments ports.CommentRepository,
	likes ports.LikeRepository,
	follows ports.FollowRepository,
	storage ports.ObjectStorage,
	processor media.Processor,
	auth *AuthService,
	pictureBucket string,
	imageMaxBytes int64,
) *UserService {
	return &UserService{
		users:         users,
		posts:         posts,
		comments:      comments,
		likes:         likes,
		follows:       follows,
		storage:       storage,
		processor:     processor,
		auth:          auth,
		pictureBucket: pictureBucket,
		imageMaxBytes: imageMaxBytes,
	}
}

// Profile assembles the user read model: the row, the aggregate counts and
// whether the viewer already follows the user.
func (s *UserService) Profile(ctx context.Context, userID uuid.UUID, viewer *domain.User) (*domain.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	followings, err := s.follows.CountFollowings(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	likes, err := s.likes.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	isFollowing := false
	if viewer != nil && viewer.ID != userID {
		if _, err := s.follows.Find(ctx, viewer.ID, userID); err == nil {
			isFollowing = true
		} else if !isNotFound(err) {
			return nil, err
		}
	}

	return &domain.UserProfile{
		User:            *user,
		FollowersCount:  followers,
		FollowingsCount: followings,
		PostsCount:      len(posts),
		LikesCount:      likes,
		CommentsCount:   comments,
		IsFollowing:     isFollowing,
	}, nil
}

type UpdateProfileInput struct {
	Name          string
	Bio           string
	Email         string
	Picture       *media.Upload
	RemovePicture bool
}

// UpdateProfile applies profile edits. A changed email re-issues the
// session token since outstanding tokens carry the old address; the fresh
// token is returned alongside the user, empty otherwise.
func (s *UserService) UpdateProfile(ctx context.Context, user *domain.User, input UpdateProfileInput) (*domain.User, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, "", ErrInvalidName
	}
	bio := strings.TrimSpace(input.Bio)
	if len(bio) > maxBioLength {
		return nil, "", ErrInvalidBio
	}
	email, err := util.NormalizeEmail(input.Email)
	if err != nil {
		return nil, "", err
	}

	pictureID := user.ProfilePictureID
	switch {
	case input.Picture != nil:
		uploaded, err := s.storeProfilePicture(ctx, input.Picture)
		if err != nil {
			return nil, "", err
		}
		s.removePicture(ctx, user.ProfilePictureID)
		pictureID = uploaded
	case input.RemovePicture:
		s.removePicture(ctx, user.ProfilePictureID)
		pictureID = ""
	}

	updated, err := s.users.UpdateProfile(ctx, user.ID, name, bio, email, pictureID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	freshToken := ""
	if updated.Email != user.Email {
		freshToken, err = s.auth.IssueAuthToken(updated)
		if err != nil {
			return nil, "", err
		}
	}
	return updated, freshToken, nil
}

// Delete removes the account; posts, comments, likes and follow edges go
// with it.
func (s *UserService) Delete(ctx context.Context, user *domain.User) error {
	s.removePicture(ctx, user.ProfilePictureID)
	if err := s.users.Delete(ctx, user.ID); err != nil {
		if isNotFound(err) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// List windows all accounts by a "size[,index]" range expression.
func (s *UserService) List(ctx context.Context, rangeText string) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return pagination.SliceRange(rangeText, users)
}

func (s *UserService) storeProfilePicture(ctx context.Context, upload *media.Upload) (string, error) {
	if s.imageMaxBytes > 0 && upload.Size > s.imageMaxBytes {
		return "", ErrImageTooLarge
	}

	result, err := s.processor.Process(ctx, *upload, 0)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s%s", uuid.New(), extensionFor(result.ContentType))
	reader := bytes.NewReader(result.Bytes)
	return s.storage.Upload(ctx, s.pictureBucket, objectName, result.ContentType, reader, int64(len(result.Bytes)))
}

func (s *UserService) removePicture(ctx context.Context, objectName string) {
	if objectName == "" {
		return
	}
	if err := s.storage.Remove(ctx, s.pictureBucket, objectName); err != nil {
		log.Printf("user: remove picture %s: %v", objectName, err)
	}
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
