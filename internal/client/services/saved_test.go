package services

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/dmitrijs2005/billboard/internal/client/client"
	"github.com/dmitrijs2005/billboard/internal/client/models"
	"github.com/dmitrijs2005/billboard/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bill(id int64, title string) models.Bill {
	return models.Bill{ID: id, Title: title}
}

func billIDs(bs []models.Bill) []int64 {
	out := make([]int64, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

func TestToggleSave_OddToggleParity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		store := newFakeSaved()
		c := NewSavedCache(&staticToken{token: "tok"}, store, nil, logging.Nop())
		ctx := context.Background()

		counts := map[int64]int{}
		for i := 0; i < 40; i++ {
			id := int64(rng.Intn(8) + 1)
			counts[id]++
			require.NoError(t, c.ToggleSave(ctx, bill(id, "b")))
		}

		var want []int64
		for id, n := range counts {
			if n%2 == 1 {
				want = append(want, id)
			}
		}
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		if want == nil {
			want = []int64{}
		}

		assert.Equal(t, want, c.SavedIDs())

		got := billIDs(c.SavedBills())
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
		assert.Equal(t, want, got, "one record per saved id")

		// The server agrees after settling.
		require.NoError(t, c.Refresh(ctx))
		assert.Equal(t, want, c.SavedIDs())
	}
}

func TestToggleSave_MostRecentFirst(t *testing.T) {
	c := NewSavedCache(&staticToken{token: "tok"}, newFakeSaved(), nil, logging.Nop())
	ctx := context.Background()

	require.NoError(t, c.ToggleSave(ctx, bill(1, "a")))
	require.NoError(t, c.ToggleSave(ctx, bill(2, "b")))
	require.NoError(t, c.ToggleSave(ctx, bill(3, "c")))
	require.NoError(t, c.ToggleSave(ctx, bill(2, "b")))

	assert.Equal(t, []int64{3, 1}, billIDs(c.SavedBills()))
	assert.True(t, c.IsSaved(1))
	assert.False(t, c.IsSaved(2))
}

func TestToggleSave_OptimisticBeforeRequest(t *testing.T) {
	store := newFakeSaved()
	c := NewSavedCache(&staticToken{token: "tok"}, store, nil, logging.Nop())

	var seenDuringRequest bool
	store.onSave = func() { seenDuringRequest = c.IsSaved(5) }

	require.NoError(t, c.ToggleSave(context.Background(), bill(5, "e")))
	assert.True(t, seenDuringRequest)
}

func TestToggleSave_FailureReconcilesWithServer(t *testing.T) {
	t.Run("save fails", func(t *testing.T) {
		store := newFakeSaved(bill(1, "a"), bill(2, "b"))
		store.saved = []models.Bill{bill(2, "b"), bill(1, "a")}
		c := NewSavedCache(&staticToken{token: "tok"}, store, nil, logging.Nop())
		ctx := context.Background()
		require.NoError(t, c.Refresh(ctx))

		store.SaveErr = client.ErrUnavailable
		err := c.ToggleSave(ctx, bill(9, "z"))
		require.ErrorIs(t, err, client.ErrUnavailable)

		assert.False(t, c.IsSaved(9))
		assert.Equal(t, []int64{2, 1}, billIDs(c.SavedBills()))
		assert.Equal(t, 2, store.ListCalls)
	})

	t.Run("unsave fails", func(t *testing.T) {
		store := newFakeSaved()
		store.saved = []models.Bill{bill(1, "a")}
		c := NewSavedCache(&staticToken{token: "tok"}, store, nil, logging.Nop())
		ctx := context.Background()
		require.NoError(t, c.Refresh(ctx))

		store.DelErr = errors.New("boom")
		err := c.ToggleSave(ctx, bill(1, "a"))
		require.EqualError(t, err, "boom")

		assert.True(t, c.IsSaved(1))
		assert.Equal(t, []int64{1}, c.SavedIDs())
	})

	t.Run("server changed meanwhile", func(t *testing.T) {
		store := newFakeSaved()
		c := NewSavedCache(&staticToken{token: "tok"}, store, nil, logging.Nop())
		ctx := context.Background()
		require.NoError(t, c.Refresh(ctx))

		// Another device saved bills 7 and 8; our save of 3 fails.
		store.saved = []models.Bill{bill(8, "h"), bill(7, "g")}
		store.SaveErr = client.ErrUnavailable
		require.Error(t, c.ToggleSave(ctx, bill(3, "c")))

		assert.Equal(t, []int64{7, 8}, c.SavedIDs())
		assert.Equal(t, []int64{8, 7}, billIDs(c.SavedBills()))
	})

	t.Run("reload fails too", func(t *testing.T) {
		store := newFakeSaved()
		c := NewSavedCache(&staticToken{token: "tok"}, store, nil, logging.Nop())

		store.SaveErr = client.ErrUnavailable
		store.ListErr = errors.New("list down")
		err := c.ToggleSave(context.Background(), bill(3, "c"))
		assert.ErrorIs(t, err, client.ErrUnavailable)
	})
}

func TestRefresh_NoTokenResets(t *testing.T) {
	tokens := &staticToken{token: "tok"}
	store := newFakeSaved()
	store.saved = []models.Bill{bill(1, "a"), bill(2, "b")}
	c := NewSavedCache(tokens, store, nil, logging.Nop())
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	require.Len(t, c.SavedIDs(), 2)

	tokens.set("")
	require.NoError(t, c.Refresh(ctx))
	assert.Empty(t, c.SavedIDs())
	assert.Empty(t, c.SavedBills())
	assert.Equal(t, 1, store.ListCalls)
}

func TestRefresh_ErrorKeepsState(t *testing.T) {
	store := newFakeSaved()
	store.saved = []models.Bill{bill(1, "a")}
	c := NewSavedCache(&staticToken{token: "tok"}, store, nil, logging.Nop())
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))

	store.ListErr = client.ErrUnauthorized
	err := c.Refresh(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, []int64{1}, c.SavedIDs())
}

func TestRefresh_DropsDuplicateRecords(t *testing.T) {
	store := newFakeSaved()
	store.saved = []models.Bill{bill(1, "first"), bill(2, "b"), bill(1, "again")}
	c := NewSavedCache(&staticToken{token: "tok"}, store, nil, logging.Nop())

	require.NoError(t, c.Refresh(context.Background()))
	bills := c.SavedBills()
	require.Len(t, bills, 2)
	assert.Equal(t, "first", bills[0].Title)
}

func TestToggleSave_NoTokenIsNoop(t *testing.T) {
	store := newFakeSaved()
	c := NewSavedCache(&staticToken{}, store, nil, logging.Nop())

	require.NoError(t, c.ToggleSave(context.Background(), bill(1, "a")))
	assert.False(t, c.IsSaved(1))
	assert.Zero(t, store.SaveCalls)
}

func TestSavedCache_WritesCatalog(t *testing.T) {
	store := newFakeSaved()
	store.saved = []models.Bill{bill(1, "a")}
	catalog := newFakeCatalog()
	c := NewSavedCache(&staticToken{token: "tok"}, store, catalog, logging.Nop())
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.ToggleSave(ctx, bill(2, "b")))
	assert.True(t, catalog.has(1))
	assert.True(t, catalog.has(2))

	catalog.Err = errors.New("read-only")
	require.NoError(t, c.ToggleSave(ctx, bill(3, "c")), "catalog failures are not toggle failures")
	assert.True(t, c.IsSaved(3))
}

func TestOnSession_RefreshesOnTokenChange(t *testing.T) {
	profiles := &fakeProfiles{Profile: &models.Profile{Onboarded: true}}
	s := NewSessionManager(&fakeIdentity{}, profiles, logging.Nop())
	store := newFakeSaved()
	store.saved = []models.Bill{bill(4, "d")}
	c := NewSavedCache(s, store, nil, logging.Nop())
	s.Subscribe(c.OnSession(context.Background()))

	require.True(t, s.SignIn(context.Background(), "ivy", "Passw0rd!").OK)
	c.Wait()
	assert.Equal(t, []int64{4}, c.SavedIDs())
	assert.Equal(t, 1, store.ListCalls, "only the token change triggers a reload")

	s.SignOut()
	c.Wait()
	assert.Empty(t, c.SavedIDs())
	assert.Equal(t, 1, store.ListCalls)
}

func TestOnSession_SignInDoesNotWaitForSavedBills(t *testing.T) {
	profiles := &fakeProfiles{Profile: &models.Profile{Onboarded: true}}
	s := NewSessionManager(&fakeIdentity{}, profiles, logging.Nop())
	store := newFakeSaved()
	store.saved = []models.Bill{bill(4, "d")}

	listing := make(chan struct{})
	release := make(chan struct{})
	store.onList = func() {
		close(listing)
		<-release
	}
	c := NewSavedCache(s, store, nil, logging.Nop())
	s.Subscribe(c.OnSession(context.Background()))

	done := make(chan Result, 1)
	go func() { done <- s.SignIn(context.Background(), "ivy", "Passw0rd!") }()

	select {
	case res := <-done:
		require.True(t, res.OK)
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("sign in blocked on the saved bills request")
	}
	assert.Equal(t, "id-ivy", profiles.LastToken, "profile fetched before saved bills arrive")
	require.NotNil(t, s.Snapshot().User)

	select {
	case <-listing:
	case <-time.After(2 * time.Second):
		t.Fatal("saved bills never requested")
	}
	assert.Empty(t, c.SavedIDs())

	close(release)
	c.Wait()
	assert.Equal(t, []int64{4}, c.SavedIDs())
}

func TestRefresh_StaleResultAfterSignOutDropped(t *testing.T) {
	tokens := &staticToken{token: "tok-a"}
	store := newFakeSaved()
	store.saved = []models.Bill{bill(1, "a")}
	c := NewSavedCache(tokens, store, nil, logging.Nop())

	// the session ends while the list is in flight
	store.onList = func() { tokens.set("") }

	require.NoError(t, c.Refresh(context.Background()))
	assert.Empty(t, c.SavedIDs())
}
