package repositories

import (
	"chat-relay/domain"
	"encoding/json"
	stderrors "errors"
	"time"

	relayerrors "chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
)

type IProfileRepository interface {
	UpsertPresence(hash string, online bool, lastSeen time.Time) error
	SetDisplayName(hash, displayName string) error
	Get(hash string) (domain.Profile, error)
}

type ProfileRepository struct {
	db *badger.DB
}

func NewProfileRepository(db *badger.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type diskProfile struct {
	Hash        string `json:"hash"`
	DisplayName string `json:"displayName"`
	Online      bool   `json:"online"`
	LastSeen    int64  `json:"lastSeen"`
}

func profileKey(hash string) []byte { return []byte("profile:" + hash) }

// UpsertPresence refreshes the online flag and last-seen timestamp,
// creating the profile on first sight. Read-modify-write inside one
// transaction.
func (p *ProfileRepository) UpsertPresence(hash string, online bool, lastSeen time.Time) error {
	return p.db.Update(func(txn *badger.Txn) error {
		dp, err := readProfile(txn, hash)
		if err != nil {
			return err
		}
		dp.Online = online
		dp.LastSeen = lastSeen.UnixNano()
		return writeProfile(txn, dp)
	})
}

// SetDisplayName updates only the display name, preserving presence state.
func (p *ProfileRepository) SetDisplayName(hash, displayName string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		dp, err := readProfile(txn, hash)
		if err != nil {
			return err
		}
		dp.DisplayName = displayName
		return writeProfile(txn, dp)
	})
}

func (p *ProfileRepository) Get(hash string) (domain.Profile, error) {
	var dp diskProfile
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(profileKey(hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &dp)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Profile{}, relayerrors.ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{
		Hash:        dp.Hash,
		DisplayName: dp.DisplayName,
		Online:      dp.Online,
		LastSeen:    time.Unix(0, dp.LastSeen).UTC(),
	}, nil
}

func readProfile(txn *badger.Txn, hash string) (diskProfile, error) {
	dp := diskProfile{Hash: hash}
	item, err := txn.Get(profileKey(hash))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return dp, nil
	}
	if err != nil {
		return dp, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &dp)
	})
	return dp, err
}

func writeProfile(txn *badger.Txn, dp diskProfile) error {
	data, err := json.Marshal(dp)
	if err != nil {
		return err
	}
	return txn.Set(profileKey(dp.Hash), data)
}
