package repositories

import (
	"chat-relay/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Store(msg domain.Message) error
	History(room domain.RoomID) ([]domain.Message, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// diskMessage is the stored representation of a relayed message.
type diskMessage struct {
	ID      string `json:"id"`
	Room    string `json:"room"`
	Author  string `json:"author"`
	Payload string `json:"payload"`
	At      int64  `json:"at"`
}

// Store persists a message in BadgerDB.
// The key is formatted as "msg:{room}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the UUID as a collision disconnector if
//     two messages arrive at the same nanosecond.
func (m MessageRepository) Store(msg domain.Message) error {
	key := fmt.Sprintf("msg:%s:%019d:%s", msg.Room, msg.At.UnixNano(), msg.ID)
	bytes, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// History retrieves messages for a room ordered by timestamp ascending.
// Thanks to the padded timestamp in the key a plain forward prefix scan is
// already sorted by time. Collection stops once the configured limit is
// reached.
func (m MessageRepository) History(room domain.RoomID) ([]domain.Message, error) {
	var diskMessages []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", room))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(diskMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var dm diskMessage
				if err := json.Unmarshal(value, &dm); err != nil {
					return err
				}
				// The key prefix is not a room boundary: room "team" also
				// prefix-matches "team:private" keys. The stored room decides.
				if dm.Room == string(room) {
					diskMessages = append(diskMessages, dm)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	for _, dm := range diskMessages {
		msg, err := toMessage(dm)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func fromMessage(msg domain.Message) diskMessage {
	return diskMessage{
		ID:      msg.ID.String(),
		Room:    string(msg.Room),
		Author:  msg.Author,
		Payload: msg.Payload,
		At:      msg.At.UnixNano(),
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:      parsedID,
		Room:    domain.RoomID(dm.Room),
		Author:  dm.Author,
		Payload: dm.Payload,
		At:      time.Unix(0, dm.At).UTC(),
	}, nil
}
