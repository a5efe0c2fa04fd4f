package repositories

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

type ISearchIndex interface {
	Index(msg domain.Message) error
	Search(ctx context.Context, room domain.RoomID, query string, limit int) ([]domain.Message, error)
}

// SearchIndex maintains a Bluge full-text index over relayed payloads, fed
// by the persistence gateway alongside the durable append. The index is a
// secondary projection: losing an entry costs a search hit, never history.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger) *SearchIndex {
	return &SearchIndex{writer: writer, log: log}
}

func (s *SearchIndex) Index(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewKeywordField("room", string(msg.Room)).StoreValue()).
		AddField(bluge.NewKeywordField("author", msg.Author).StoreValue()).
		AddField(bluge.NewTextField("payload", msg.Payload).StoreValue()).
		AddField(bluge.NewKeywordField("at", msg.At.UTC().Format(time.RFC3339Nano)).StoreValue())
	return s.writer.Update(doc.ID(), doc)
}

// Search runs a payload match query scoped to one room.
func (s *SearchIndex) Search(ctx context.Context, room domain.RoomID, query string, limit int) ([]domain.Message, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn("Closing index reader failed", "err", err)
		}
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(string(room)).SetField("room")).
		AddMust(bluge.NewMatchQuery(query).SetField("payload"))

	iter, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var hits []domain.Message
	for {
		match, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		var msg domain.Message
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, err := uuid.Parse(string(value)); err == nil {
					msg.ID = id
				}
			case "room":
				msg.Room = domain.RoomID(value)
			case "author":
				msg.Author = string(value)
			case "payload":
				msg.Payload = string(value)
			case "at":
				if at, err := time.Parse(time.RFC3339Nano, string(value)); err == nil {
					msg.At = at
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, msg)
	}
	return hits, nil
}
