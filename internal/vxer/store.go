package vxer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "vxer/"

// entryGrace keeps a pending entry in badger past its deadline so the
// cleanup job still sees it and can take the bot's reaction back.
const entryGrace = 10 * time.Minute

// Pending is a message the bot reacted to and is waiting on.
type Pending struct {
	GuildID   string    `json:"guild"`
	ChannelID string    `json:"channel"`
	MessageID string    `json:"message"`
	Site      Site      `json:"site"`
	Deadline  time.Time `json:"deadline"`
}

// Store keeps pending messages with a TTL.
type Store struct {
	db *badger.DB
}

// OpenStore opens the store at dir. An empty dir keeps it in memory.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("couldn't open vxer store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func pendingKey(messageID string) []byte {
	return []byte(keyPrefix + messageID)
}

// Track records p until its deadline passes.
func (s *Store) Track(p Pending) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	ttl := max(time.Until(p.Deadline), 0) + entryGrace
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(pendingKey(p.MessageID), b).WithTTL(ttl))
	})
}

// Peek returns the pending entry for messageID without removing it.
func (s *Store) Peek(messageID string) (Pending, bool, error) {
	var p Pending
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pendingKey(messageID))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, err
	}
	return p, true, nil
}

// Take removes and returns the pending entry for messageID.
func (s *Store) Take(messageID string) (Pending, bool, error) {
	var p Pending
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(pendingKey(messageID))
		if err != nil {
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(v, &p); err != nil {
			return err
		}
		return txn.Delete(item.KeyCopy(nil))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, err
	}
	return p, true, nil
}

// Expired removes and returns every entry whose deadline is before now.
func (s *Store) Expired(now time.Time) ([]Pending, error) {
	var out []Pending
	err := s.db.Update(func(txn *badger.Txn) error {
		keys, err := s.collectExpired(txn, now, &out)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

// collectExpired gathers expired entries and unreadable keys. The caller
// deletes them once the iterator is closed.
func (s *Store) collectExpired(txn *badger.Txn, now time.Time, out *[]Pending) ([][]byte, error) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	prefix := []byte(keyPrefix)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		v, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		var p Pending
		if err := json.Unmarshal(v, &p); err != nil {
			keys = append(keys, item.KeyCopy(nil))
			continue
		}
		if p.Deadline.Before(now) {
			*out = append(*out, p)
			keys = append(keys, item.KeyCopy(nil))
		}
	}
	return keys, nil
}
