package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagora/forum/models"
)

func seedVotableThread(t *testing.T, st *MemoryStore) *models.Thread {
	t.Helper()
	thread := &models.Thread{AuthorID: 1, Title: "t", Content: "c", IsVisible: true}
	require.NoError(t, st.CreateThread(context.Background(), thread))
	return thread
}

func TestToggleUpvoteFlipsState(t *testing.T) {
	st := NewMemoryStore()
	thread := seedVotableThread(t, st)
	ctx := context.Background()

	upvoted, err := st.ToggleUpvote(ctx, 7, &thread.ID, nil)
	require.NoError(t, err)
	assert.True(t, upvoted)

	got, err := st.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpvoteCount)

	upvoted, err = st.ToggleUpvote(ctx, 7, &thread.ID, nil)
	require.NoError(t, err)
	assert.False(t, upvoted)

	got, err = st.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UpvoteCount)
}

func TestToggleUpvoteIndependentPerUser(t *testing.T) {
	st := NewMemoryStore()
	thread := seedVotableThread(t, st)
	ctx := context.Background()

	for user := uint(1); user <= 3; user++ {
		upvoted, err := st.ToggleUpvote(ctx, user, &thread.ID, nil)
		require.NoError(t, err)
		assert.True(t, upvoted)
	}

	got, err := st.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.UpvoteCount)

	// One user retracting leaves the others intact.
	upvoted, err := st.ToggleUpvote(ctx, 2, &thread.ID, nil)
	require.NoError(t, err)
	assert.False(t, upvoted)

	got, err = st.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UpvoteCount)
}

func TestToggleUpvoteConcurrentRetries(t *testing.T) {
	st := NewMemoryStore()
	thread := seedVotableThread(t, st)
	ctx := context.Background()

	// An even number of toggles from one user must always net out to
	// "not upvoted" with the counter restored, no matter the interleaving.
	const toggles = 40
	var wg sync.WaitGroup
	wg.Add(toggles)
	for i := 0; i < toggles; i++ {
		go func() {
			defer wg.Done()
			_, err := st.ToggleUpvote(ctx, 7, &thread.ID, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := st.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UpvoteCount)

	// The next toggle starts from a clean slate.
	upvoted, err := st.ToggleUpvote(ctx, 7, &thread.ID, nil)
	require.NoError(t, err)
	assert.True(t, upvoted)
}

func TestToggleUpvoteConcurrentOddCount(t *testing.T) {
	st := NewMemoryStore()
	thread := seedVotableThread(t, st)
	ctx := context.Background()

	// An odd number of toggles nets out to exactly one upvote. A toggle
	// that loses the removal race must win the state back as an upvote
	// rather than decrement a row it never deleted, or the counter here
	// would drift below 1.
	const toggles = 41
	var wg sync.WaitGroup
	wg.Add(toggles)
	for i := 0; i < toggles; i++ {
		go func() {
			defer wg.Done()
			_, err := st.ToggleUpvote(ctx, 7, &thread.ID, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := st.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.UpvoteCount)

	upvoted, err := st.ToggleUpvote(ctx, 7, &thread.ID, nil)
	require.NoError(t, err)
	assert.False(t, upvoted)
}

func TestToggleSubscriptionFlipsState(t *testing.T) {
	st := NewMemoryStore()
	thread := seedVotableThread(t, st)
	ctx := context.Background()

	subscribed, err := st.ToggleSubscription(ctx, thread.ID, 5)
	require.NoError(t, err)
	assert.True(t, subscribed)

	subscribers, err := st.ListSubscribers(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{5}, subscribers)

	subscribed, err = st.ToggleSubscription(ctx, thread.ID, 5)
	require.NoError(t, err)
	assert.False(t, subscribed)

	subscribers, err = st.ListSubscribers(ctx, thread.ID)
	require.NoError(t, err)
	assert.Empty(t, subscribers)
}

func TestResolveFlagTerminal(t *testing.T) {
	st := NewMemoryStore()
	thread := seedVotableThread(t, st)
	ctx := context.Background()

	flag := &models.Flag{UserID: 2, ThreadID: &thread.ID, Reason: "off topic"}
	require.NoError(t, st.CreateFlag(ctx, flag))
	assert.Equal(t, models.FlagStatusPending, flag.Status)

	got, err := st.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FlagCount)

	resolved, err := st.ResolveFlag(ctx, flag.ID, 9, flag.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, models.FlagStatusResolved, resolved.Status)

	_, err = st.ResolveFlag(ctx, flag.ID, 9, flag.CreatedAt)
	assert.ErrorIs(t, err, ErrFlagResolved)

	_, err = st.ResolveFlag(ctx, 404, 9, flag.CreatedAt)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListThreadsFilterAndPaging(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		category := "general"
		if i%2 == 0 {
			category = "golang"
		}
		thread := &models.Thread{AuthorID: 1, Title: "thread", Content: "body", Category: category, IsVisible: true}
		require.NoError(t, st.CreateThread(ctx, thread))
	}
	hidden := &models.Thread{AuthorID: 1, Title: "hidden", Content: "body", Category: "general", IsVisible: false}
	require.NoError(t, st.CreateThread(ctx, hidden))

	_, total, err := st.ListThreads(ctx, ThreadFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total, "hidden threads excluded by default")

	_, total, err = st.ListThreads(ctx, ThreadFilter{IncludeHidden: true})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)

	_, total, err = st.ListThreads(ctx, ThreadFilter{Category: "golang"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	page, total, err := st.ListThreads(ctx, ThreadFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	page, _, err = st.ListThreads(ctx, ThreadFilter{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestListThreadComments(t *testing.T) {
	st := NewMemoryStore()
	thread := seedVotableThread(t, st)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		comment := &models.Comment{ThreadID: thread.ID, AuthorID: 1, Content: "c"}
		require.NoError(t, st.CreateComment(ctx, comment))
	}
	other := &models.Comment{ThreadID: 999, AuthorID: 1, Content: "elsewhere"}
	require.NoError(t, st.CreateComment(ctx, other))

	comments, err := st.ListThreadComments(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i := 1; i < len(comments); i++ {
		assert.Less(t, comments[i-1].ID, comments[i].ID, "comments ordered oldest first")
	}
}
