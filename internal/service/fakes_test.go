package service

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vitae-social/vitae-api/internal/domain"
	"github.com/vitae-social/vitae-api/internal/media"
)

// errUniqueViolation mimics the driver error surfaced on constraint hits.
var errUniqueViolation = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

// fakeClock hands out strictly increasing timestamps so list orderings are
// deterministic in tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type memoryUserRepo struct {
	clock *fakeClock
	users map[uuid.UUID]*domain.User
	order []uuid.UUID
}

func newMemoryUserRepo(clock *fakeClock) *memoryUserRepo {
	return &memoryUserRepo{clock: clock, users: make(map[uuid.UUID]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, errUniqueViolation
		}
	}
	stored := *user
	stored.Active = true
	stored.CreatedOn = r.clock.next()
	stored.UpdatedOn = stored.CreatedOn
	r.users[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	copied := stored
	return &copied, nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, name, bio, email, profilePictureID string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for otherID, other := range r.users {
		if otherID != id && other.Email == email {
			return nil, errUniqueViolation
		}
	}
	user.Name = name
	user.Bio = bio
	user.Email = email
	user.ProfilePictureID = profilePictureID
	user.UpdatedOn = r.clock.next()
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash, salt []byte) error {
	user, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.PasswordHash = hash
	user.PasswordSalt = salt
	user.ResetToken = ""
	user.SigninAttempts = 0
	user.Active = true
	return nil
}

func (r *memoryUserRepo) UpdateSigninAttempts(_ context.Context, id uuid.UUID, attempts int, active bool) error {
	user, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.SigninAttempts = attempts
	user.Active = active
	return nil
}

func (r *memoryUserRepo) SetResetToken(_ context.Context, id uuid.UUID, resetToken string) error {
	user, ok := r.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.ResetToken = resetToken
	return nil
}

func (r *memoryUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		if user, ok := r.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *memoryUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *memoryUserRepo) Search(_ context.Context, query string) ([]domain.User, error) {
	needle := strings.ToLower(query)
	var out []domain.User
	for _, id := range r.order {
		user, ok := r.users[id]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(user.Name), needle) || strings.Contains(strings.ToLower(user.Bio), needle) {
			out = append(out, *user)
		}
	}
	return out, nil
}

type memoryPostRepo struct {
	clock *fakeClock
	posts map[uuid.UUID]*domain.Post
	likes *memoryLikeRepo
}

func newMemoryPostRepo(clock *fakeClock, likes *memoryLikeRepo) *memoryPostRepo {
	return &memoryPostRepo{clock: clock, posts: make(map[uuid.UUID]*domain.Post), likes: likes}
}

func (r *memoryPostRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *post
	return &copied, nil
}

func (r *memoryPostRepo) Create(_ context.Context, post *domain.Post) (*domain.Post, error) {
	stored := *post
	stored.CreatedOn = r.clock.next()
	stored.UpdatedOn = stored.CreatedOn
	r.posts[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *memoryPostRepo) Update(_ context.Context, id, userID uuid.UUID, title string, quotes []string) (*domain.Post, error) {
	post, ok := r.posts[id]
	if !ok || post.UserID != userID {
		return nil, sql.ErrNoRows
	}
	post.Title = title
	post.Quotes = quotes
	post.UpdatedOn = r.clock.next()
	copied := *post
	return &copied, nil
}

func (r *memoryPostRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	post, ok := r.posts[id]
	if !ok || post.UserID != userID {
		return nil
	}
	delete(r.posts, id)
	return nil
}

func (r *memoryPostRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Post, error) {
	var out []domain.Post
	for _, post := range r.posts {
		if post.UserID == userID {
			out = append(out, *post)
		}
	}
	sortPostsDesc(out)
	return out, nil
}

func (r *memoryPostRepo) ListLikedBy(_ context.Context, userID uuid.UUID) ([]domain.Post, error) {
	var out []domain.Post
	for _, like := range r.likes.likes {
		if like.UserID != userID {
			continue
		}
		if post, ok := r.posts[like.PostID]; ok {
			out = append(out, *post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.Before(out[j].CreatedOn) })
	return out, nil
}

func (r *memoryPostRepo) ListByAuthors(_ context.Context, authorIDs []uuid.UUID, perAuthorLimit int) ([]domain.Post, error) {
	allowed := make(map[uuid.UUID]bool, len(authorIDs))
	for _, id := range authorIDs {
		allowed[id] = true
	}
	var out []domain.Post
	for _, post := range r.posts {
		if allowed[post.UserID] {
			out = append(out, *post)
		}
	}
	sortPostsDesc(out)
	perAuthor := make(map[uuid.UUID]int)
	capped := out[:0]
	for _, post := range out {
		if perAuthor[post.UserID] >= perAuthorLimit {
			continue
		}
		perAuthor[post.UserID]++
		capped = append(capped, post)
	}
	return capped, nil
}

func (r *memoryPostRepo) ListExcludingAuthors(_ context.Context, authorIDs []uuid.UUID, limit int) ([]domain.Post, error) {
	excluded := make(map[uuid.UUID]bool, len(authorIDs))
	for _, id := range authorIDs {
		excluded[id] = true
	}
	var out []domain.Post
	for _, post := range r.posts {
		if !excluded[post.UserID] {
			out = append(out, *post)
		}
	}
	sortPostsDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryPostRepo) Search(_ context.Context, query string) ([]domain.Post, error) {
	needle := strings.ToLower(query)
	var out []domain.Post
	for _, post := range r.posts {
		matched := strings.Contains(strings.ToLower(post.Title), needle)
		for _, q := range post.Quotes {
			if strings.Contains(strings.ToLower(q), needle) {
				matched = true
			}
		}
		if matched {
			out = append(out, *post)
		}
	}
	sortPostsDesc(out)
	return out, nil
}

func sortPostsDesc(posts []domain.Post) {
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedOn.After(posts[j].CreatedOn) })
}

type memoryCommentRepo struct {
	clock    *fakeClock
	comments map[uuid.UUID]*domain.Comment
}

func newMemoryCommentRepo(clock *fakeClock) *memoryCommentRepo {
	return &memoryCommentRepo{clock: clock, comments: make(map[uuid.UUID]*domain.Comment)}
}

func (r *memoryCommentRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *comment
	return &copied, nil
}

func (r *memoryCommentRepo) Create(_ context.Context, comment *domain.Comment) (*domain.Comment, error) {
	stored := *comment
	stored.CreatedOn = r.clock.next()
	r.comments[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *memoryCommentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.comments, id)
	for replyID, reply := range r.comments {
		if reply.ParentID != nil && *reply.ParentID == id {
			delete(r.comments, replyID)
		}
	}
	return nil
}

func (r *memoryCommentRepo) ListTopLevelByPost(_ context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.PostID == postID && comment.ParentID == nil {
			out = append(out, *comment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.Before(out[j].CreatedOn) })
	return out, nil
}

func (r *memoryCommentRepo) ListReplies(_ context.Context, parentID uuid.UUID) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.ParentID != nil && *comment.ParentID == parentID {
			out = append(out, *comment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.Before(out[j].CreatedOn) })
	return out, nil
}

func (r *memoryCommentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.UserID == userID {
			out = append(out, *comment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.Before(out[j].CreatedOn) })
	return out, nil
}

func (r *memoryCommentRepo) CountTopLevelByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	comments, _ := r.ListTopLevelByPost(ctx, postID)
	return len(comments), nil
}

func (r *memoryCommentRepo) CountReplies(ctx context.Context, parentID uuid.UUID) (int, error) {
	replies, _ := r.ListReplies(ctx, parentID)
	return len(replies), nil
}

func (r *memoryCommentRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	comments, _ := r.ListByUser(ctx, userID)
	return len(comments), nil
}

type memoryLikeRepo struct {
	clock *fakeClock
	likes []domain.PostLike
}

func newMemoryLikeRepo(clock *fakeClock) *memoryLikeRepo {
	return &memoryLikeRepo{clock: clock}
}

func (r *memoryLikeRepo) Find(_ context.Context, userID, postID uuid.UUID) (*domain.PostLike, error) {
	for _, like := range r.likes {
		if like.UserID == userID && like.PostID == postID {
			copied := like
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryLikeRepo) Add(_ context.Context, userID, postID uuid.UUID) (*domain.PostLike, error) {
	for _, like := range r.likes {
		if like.UserID == userID && like.PostID == postID {
			return nil, errUniqueViolation
		}
	}
	like := domain.PostLike{ID: uuid.New(), PostID: postID, UserID: userID, CreatedOn: r.clock.next()}
	r.likes = append(r.likes, like)
	return &like, nil
}

func (r *memoryLikeRepo) Remove(_ context.Context, userID, postID uuid.UUID) error {
	for i, like := range r.likes {
		if like.UserID == userID && like.PostID == postID {
			r.likes = append(r.likes[:i], r.likes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryLikeRepo) CountByPost(_ context.Context, postID uuid.UUID) (int, error) {
	count := 0
	for _, like := range r.likes {
		if like.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (r *memoryLikeRepo) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, like := range r.likes {
		if like.UserID == userID {
			count++
		}
	}
	return count, nil
}

type memoryFollowRepo struct {
	clock *fakeClock
	edges []domain.UserFollowing
}

func newMemoryFollowRepo(clock *fakeClock) *memoryFollowRepo {
	return &memoryFollowRepo{clock: clock}
}

func (r *memoryFollowRepo) Find(_ context.Context, followerID, followingID uuid.UUID) (*domain.UserFollowing, error) {
	for _, edge := range r.edges {
		if edge.FollowerID == followerID && edge.FollowingID == followingID {
			copied := edge
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryFollowRepo) Add(_ context.Context, followerID, followingID uuid.UUID) (*domain.UserFollowing, error) {
	for _, edge := range r.edges {
		if edge.FollowerID == followerID && edge.FollowingID == followingID {
			return nil, errUniqueViolation
		}
	}
	edge := domain.UserFollowing{ID: uuid.New(), FollowerID: followerID, FollowingID: followingID, CreatedOn: r.clock.next()}
	r.edges = append(r.edges, edge)
	return &edge, nil
}

func (r *memoryFollowRepo) Remove(_ context.Context, followerID, followingID uuid.UUID) error {
	for i, edge := range r.edges {
		if edge.FollowerID == followerID && edge.FollowingID == followingID {
			r.edges = append(r.edges[:i], r.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryFollowRepo) ListFollowers(_ context.Context, userID uuid.UUID) ([]domain.UserFollowing, error) {
	var out []domain.UserFollowing
	for _, edge := range r.edges {
		if edge.FollowingID == userID {
			out = append(out, edge)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	return out, nil
}

func (r *memoryFollowRepo) ListFollowings(_ context.Context, userID uuid.UUID) ([]domain.UserFollowing, error) {
	var out []domain.UserFollowing
	for _, edge := range r.edges {
		if edge.FollowerID == userID {
			out = append(out, edge)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	return out, nil
}

func (r *memoryFollowRepo) CountFollowers(ctx context.Context, userID uuid.UUID) (int, error) {
	edges, _ := r.ListFollowers(ctx, userID)
	return len(edges), nil
}

func (r *memoryFollowRepo) CountFollowings(ctx context.Context, userID uuid.UUID) (int, error) {
	edges, _ := r.ListFollowings(ctx, userID)
	return len(edges), nil
}

type memoryObjectStorage struct {
	objects map[string][]byte
	removed []string
}

func newMemoryObjectStorage() *memoryObjectStorage {
	return &memoryObjectStorage{objects: make(map[string][]byte)}
}

func (s *memoryObjectStorage) Upload(_ context.Context, bucket, objectName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.objects[bucket+"/"+objectName] = data
	return objectName, nil
}

func (s *memoryObjectStorage) Remove(_ context.Context, bucket, objectName string) error {
	delete(s.objects, bucket+"/"+objectName)
	s.removed = append(s.removed, objectName)
	return nil
}

// passthroughProcessor hands the upload bytes straight back.
type passthroughProcessor struct{}

func (passthroughProcessor) Process(_ context.Context, upload media.Upload, _ int) (*media.Result, error) {
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, err
	}
	return &media.Result{Bytes: data, ContentType: "image/jpeg"}, nil
}

type recordingMailer struct {
	welcomes        []string
	resets          []string
	resetLinks      []string
	passwordChanges []string
	lockNotices     []string
}

func (m *recordingMailer) SendWelcome(_ context.Context, email, _ string) error {
	m.welcomes = append(m.welcomes, email)
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, _, resetLink string) error {
	m.resets = append(m.resets, email)
	m.resetLinks = append(m.resetLinks, resetLink)
	return nil
}

func (m *recordingMailer) SendPasswordChanged(_ context.Context, email, _ string) error {
	m.passwordChanges = append(m.passwordChanges, email)
	return nil
}

func (m *recordingMailer) SendAccountLocked(_ context.Context, email, _ string) error {
	m.lockNotices = append(m.lockNotices, email)
	return nil
}

type staticRanker struct {
	scores map[uuid.UUID]int
}

func (r staticRanker) PopularityByPost(_ context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(postIDs))
	for _, id := range postIDs {
		out[id] = r.scores[id]
	}
	return out, nil
}
