package repositories

import (
	"encoding/json"
	stderrors "errors"
	"time"

	relayerrors "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
)

type IRoomRepository interface {
	Create(room RoomRecord) error
	Get(name string) (RoomRecord, error)
}

// RoomRecord is the only durable materialization of a room: the relay core
// itself treats rooms as plain labels.
type RoomRecord struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	SecretHash  string    `json:"secretHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func roomKey(name string) []byte { return []byte("room:" + name) }

// Create persists a room, rejecting duplicates inside the same transaction.
func (r *RoomRepository) Create(room RoomRecord) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := roomKey(room.Name)
		if _, err := txn.Get(key); err == nil {
			return relayerrors.ErrRoomAlreadyExists
		}
		return txn.Set(key, data)
	})
}

func (r *RoomRepository) Get(name string) (RoomRecord, error) {
	var room RoomRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &room)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return RoomRecord{}, relayerrors.ErrRoomNotFound
	}
	if err != nil {
		return RoomRecord{}, err
	}
	return room, nil
}
