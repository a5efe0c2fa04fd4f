package repositories

import (
	"chat-relay/domain"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Store_And_Get_History_Sorted_Ascending(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default(), nil)
	room := domain.RoomID("lobby")
	at := time.Now().UTC()
	messages := []domain.Message{
		{ID: uuid.New(), Room: room, Author: "alice", Payload: "first", At: at},
		{ID: uuid.New(), Room: room, Author: "bob", Payload: "second", At: at.Add(1 * time.Minute)},
		{ID: uuid.New(), Room: room, Author: "clara", Payload: "third", At: at.Add(2 * time.Minute)},
	}

	// Stored out of order on purpose
	req.NoError(repository.Store(messages[2]))
	req.NoError(repository.Store(messages[0]))
	req.NoError(repository.Store(messages[1]))

	// When fetching the history
	fetched, err := repository.History(room)
	req.NoError(err)

	// Then the messages come back oldest first
	req.Equal(messages, fetched)
}

func Test_History_Is_Scoped_To_One_Room(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default(), nil)
	at := time.Now().UTC()
	req.NoError(repository.Store(domain.Message{ID: uuid.New(), Room: "room1", Author: "alice", Payload: "one", At: at}))
	req.NoError(repository.Store(domain.Message{ID: uuid.New(), Room: "room2", Author: "bob", Payload: "two", At: at}))

	fetched, err := repository.History("room1")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("one", fetched[0].Payload)
}

func Test_History_Room_Prefix_Is_Not_A_Boundary(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	repository := NewMessageRepository(db, slog.Default(), nil)
	at := time.Now().UTC()
	req.NoError(repository.Store(domain.Message{ID: uuid.New(), Room: "team", Author: "alice", Payload: "public", At: at}))
	req.NoError(repository.Store(domain.Message{ID: uuid.New(), Room: "team:private", Author: "bob", Payload: "secret stuff", At: at}))

	// "team" shares a key prefix with "team:private" but must never see it
	fetched, err := repository.History("team")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("public", fetched[0].Payload)

	fetched, err = repository.History("team:private")
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("secret stuff", fetched[0].Payload)
}

func Test_History_Honors_The_Limit(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	limit := 4
	repository := NewMessageRepository(db, slog.Default(), lo.ToPtr(limit))
	room := domain.RoomID("busy")
	now := time.Now().UTC()

	for i := 1; i <= 10; i++ {
		req.NoError(repository.Store(domain.Message{
			ID:      uuid.New(),
			Room:    room,
			Author:  fmt.Sprintf("user_%d", i),
			Payload: fmt.Sprintf("Message %d", i),
			At:      now.Add(time.Duration(i) * time.Minute),
		}))
	}

	fetched, err := repository.History(room)
	req.NoError(err)
	req.Len(fetched, limit)
	// The oldest messages win when the cap kicks in
	req.Equal("user_1", fetched[0].Author)
	req.Equal("user_4", fetched[3].Author)
}
