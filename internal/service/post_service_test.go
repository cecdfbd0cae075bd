package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
)

type postFixture struct {
	svc     *PostService
	users   *memoryUserRepo
	posts   *memoryPostRepo
	likes   *memoryLikeRepo
	follows *memoryFollowRepo
	ranker  *staticRanker
}

func newPostFixture() *postFixture {
	clock := newFakeClock()
	users := newMemoryUserRepo(clock)
	likes := newMemoryLikeRepo(clock)
	posts := newMemoryPostRepo(clock, likes)
	comments := newMemoryCommentRepo(clock)
	follows := newMemoryFollowRepo(clock)
	ranker := &staticRanker{scores: map[uuid.UUID]int{}}
	return &postFixture{
		svc:     NewPostService(posts, users, comments, likes, follows, ranker),
		users:   users,
		posts:   posts,
		likes:   likes,
		follows: follows,
		ranker:  ranker,
	}
}

func (f *postFixture) addUser(t *testing.T, name string) *domain.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), &domain.User{
		ID:    uuid.New(),
		Email: name + "@example.com",
		Name:  name,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

func (f *postFixture) addPost(t *testing.T, author *domain.User, title string) *domain.Post {
	t.Helper()
	card, err := f.svc.Create(context.Background(), author, title, []string{"a memorable quote"})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	post, err := f.posts.FindByID(context.Background(), card.ID)
	if err != nil {
		t.Fatalf("find created post: %v", err)
	}
	return post
}

func TestPostService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	author := f.addUser(t, "ada")

	if _, err := f.svc.Create(ctx, author, "", []string{"fine quote"}); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle for empty title, got %v", err)
	}
	if _, err := f.svc.Create(ctx, author, "Title", nil); !errors.Is(err, ErrInvalidQuote) {
		t.Fatalf("expected ErrInvalidQuote for no quotes, got %v", err)
	}
	if _, err := f.svc.Create(ctx, author, "Title", []string{"x"}); !errors.Is(err, ErrInvalidQuote) {
		t.Fatalf("expected ErrInvalidQuote for one-character quote, got %v", err)
	}
}

func TestPostService_GetCarriesCountsAndViewerState(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	author := f.addUser(t, "ada")
	viewer := f.addUser(t, "grace")
	post := f.addPost(t, author, "On engines")

	if _, err := f.svc.ToggleLike(ctx, viewer, post.ID); err != nil {
		t.Fatalf("ToggleLike returned error: %v", err)
	}

	card, err := f.svc.Get(ctx, post.ID, viewer)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if card.LikesCount != 1 || !card.IsLiked {
		t.Fatalf("expected liked card with one like, got likes=%d isLiked=%v", card.LikesCount, card.IsLiked)
	}
	if card.Author.ID != author.ID {
		t.Fatalf("card author %s, expected %s", card.Author.ID, author.ID)
	}

	anonymous, err := f.svc.Get(ctx, post.ID, nil)
	if err != nil {
		t.Fatalf("Get without viewer returned error: %v", err)
	}
	if anonymous.IsLiked {
		t.Fatalf("anonymous viewer must not see isLiked")
	}
}

func TestPostService_ToggleLikeFlips(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	author := f.addUser(t, "ada")
	viewer := f.addUser(t, "grace")
	post := f.addPost(t, author, "On engines")

	liked, err := f.svc.ToggleLike(ctx, viewer, post.ID)
	if err != nil || !liked {
		t.Fatalf("first toggle: liked=%v err=%v", liked, err)
	}
	liked, err = f.svc.ToggleLike(ctx, viewer, post.ID)
	if err != nil || liked {
		t.Fatalf("second toggle: liked=%v err=%v", liked, err)
	}

	if _, err := f.svc.ToggleLike(ctx, viewer, uuid.New()); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound for unknown post, got %v", err)
	}
}

func TestPostService_OwnershipChecks(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	author := f.addUser(t, "ada")
	other := f.addUser(t, "grace")
	post := f.addPost(t, author, "On engines")

	if _, err := f.svc.Update(ctx, other, post.ID, "Rewritten", []string{"new quote"}); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("expected ErrNotPostOwner on update, got %v", err)
	}
	if err := f.svc.Delete(ctx, other, post.ID); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("expected ErrNotPostOwner on delete, got %v", err)
	}
	if err := f.svc.Delete(ctx, author, post.ID); err != nil {
		t.Fatalf("owner delete returned error: %v", err)
	}
	if _, err := f.svc.Get(ctx, post.ID, nil); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound after delete, got %v", err)
	}
}

func TestPostService_UserPostsPagination(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	author := f.addUser(t, "ada")

	var created []*domain.Post
	for _, title := range []string{"first", "second", "third", "fourth", "fifth"} {
		created = append(created, f.addPost(t, author, title))
	}

	// Newest first: head window is [fifth, fourth].
	head, err := f.svc.UserPosts(ctx, author.ID, nil, 2, "", "")
	if err != nil {
		t.Fatalf("UserPosts returned error: %v", err)
	}
	if len(head) != 2 || head[0].Title != "fifth" || head[1].Title != "fourth" {
		t.Fatalf("unexpected head window: %+v", head)
	}

	// Anchoring after "fourth" continues with [third, second].
	next, err := f.svc.UserPosts(ctx, author.ID, nil, 2, created[3].ID.String(), "")
	if err != nil {
		t.Fatalf("UserPosts with after returned error: %v", err)
	}
	if len(next) != 2 || next[0].Title != "third" || next[1].Title != "second" {
		t.Fatalf("unexpected after window: %+v", next)
	}

	// An unknown anchor yields an empty window.
	missing, err := f.svc.UserPosts(ctx, author.ID, nil, 2, uuid.New().String(), "")
	if err != nil {
		t.Fatalf("UserPosts with unknown anchor returned error: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("expected empty window for unknown anchor, got %d items", len(missing))
	}
}

func TestPostService_FeedCoversUserAndFollowings(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	me := f.addUser(t, "ada")
	followed := f.addUser(t, "grace")
	stranger := f.addUser(t, "charles")

	f.addPost(t, me, "mine")
	f.addPost(t, followed, "followed post")
	f.addPost(t, stranger, "stranger post")

	if _, err := f.follows.Add(ctx, me.ID, followed.ID); err != nil {
		t.Fatalf("add follow edge: %v", err)
	}

	feed, err := f.svc.Feed(ctx, me, 10, "", "")
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	titles := make(map[string]bool, len(feed))
	for _, card := range feed {
		titles[card.Title] = true
	}
	if !titles["mine"] || !titles["followed post"] || titles["stranger post"] {
		t.Fatalf("unexpected feed contents: %v", titles)
	}
}

func TestPostService_ExploreExcludesFollowedAndRanks(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	me := f.addUser(t, "ada")
	followed := f.addUser(t, "grace")
	strangerA := f.addUser(t, "charles")
	strangerB := f.addUser(t, "alan")

	f.addPost(t, followed, "followed post")
	viewed := f.addPost(t, strangerA, "much viewed")
	liked := f.addPost(t, strangerB, "much liked")

	if _, err := f.follows.Add(ctx, me.ID, followed.ID); err != nil {
		t.Fatalf("add follow edge: %v", err)
	}
	f.ranker.scores[viewed.ID] = 50
	if _, err := f.likes.Add(ctx, me.ID, liked.ID); err != nil {
		t.Fatalf("add like: %v", err)
	}

	explore, err := f.svc.Explore(ctx, me, 10, "", "")
	if err != nil {
		t.Fatalf("Explore returned error: %v", err)
	}
	if len(explore) != 2 {
		t.Fatalf("expected 2 explore posts, got %d", len(explore))
	}
	if explore[0].Title != "much viewed" || explore[1].Title != "much liked" {
		t.Fatalf("unexpected explore ranking: [%s, %s]", explore[0].Title, explore[1].Title)
	}
	for _, card := range explore {
		if card.Title == "followed post" {
			t.Fatalf("explore must not contain followed authors")
		}
	}
}

func TestPostService_LikedPostsOldestFirst(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	author := f.addUser(t, "ada")
	viewer := f.addUser(t, "grace")

	first := f.addPost(t, author, "first")
	second := f.addPost(t, author, "second")

	for _, post := range []*domain.Post{first, second} {
		if _, err := f.svc.ToggleLike(ctx, viewer, post.ID); err != nil {
			t.Fatalf("ToggleLike returned error: %v", err)
		}
	}

	likedPosts, err := f.svc.LikedPosts(ctx, viewer.ID, viewer, 10, "", "")
	if err != nil {
		t.Fatalf("LikedPosts returned error: %v", err)
	}
	if len(likedPosts) != 2 || likedPosts[0].Title != "first" || likedPosts[1].Title != "second" {
		t.Fatalf("unexpected liked posts order: %+v", likedPosts)
	}
	if !likedPosts[0].IsLiked || !likedPosts[1].IsLiked {
		t.Fatalf("expected liked flags set")
	}
}
