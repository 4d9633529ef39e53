package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/ndmitriev/docsweep/internal/models"
)

// Key layout:
//
//	doc:<entity>:<id>              -> JSON fields
//	status:<entity>                -> JSON status
//	report:<unixnano>:<report id>  -> JSON report
//
// Report keys embed a zero-padded timestamp so a reverse iteration yields
// newest-first order without a secondary index.
const (
	docPrefix    = "doc:"
	statusPrefix = "status:"
	reportPrefix = "report:"
)

// BadgerStore implements Store on an embedded BadgerDB instance.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens a persistent store rooted at dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenBadgerInMemory opens a throwaway in-memory store. Used by tests and
// the seed-and-scan demo path.
func OpenBadgerInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func docKey(entityType, id string) []byte {
	return []byte(docPrefix + entityType + ":" + id)
}

func statusKey(entityType string) []byte {
	return []byte(statusPrefix + entityType)
}

func reportKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", reportPrefix, ts.UnixNano(), id))
}

// ListDocuments returns all documents of an entity type in key order.
func (s *BadgerStore) ListDocuments(ctx context.Context, entityType string) ([]models.Document, error) {
	prefix := []byte(docPrefix + entityType + ":")
	var docs []models.Document

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := strings.TrimPrefix(string(item.Key()), string(prefix))

			var fields models.Fields
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &fields)
			})
			if err != nil {
				return fmt.Errorf("decode document %s: %w", id, err)
			}
			docs = append(docs, models.Document{ID: id, Fields: fields})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateDocument writes a document's fields, creating it if absent.
func (s *BadgerStore) UpdateDocument(ctx context.Context, entityType, id string, fields models.Fields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(entityType, id), data)
	})
}

// DeleteDocument removes a document. Absent documents are a no-op.
func (s *BadgerStore) DeleteDocument(ctx context.Context, entityType, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(docKey(entityType, id))
	})
}

// GetStatus returns the stored status or ErrNotFound.
func (s *BadgerStore) GetStatus(ctx context.Context, entityType string) (*models.Status, error) {
	var status models.Status
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(statusKey(entityType))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &status)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get status %s: %w", entityType, err)
	}
	return &status, nil
}

// UpsertStatus overwrites the status record for its entity type.
func (s *BadgerStore) UpsertStatus(ctx context.Context, status *models.Status) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode status %s: %w", status.EntityType, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(statusKey(status.EntityType), data)
	})
}

// AppendReport persists a report under a fresh id and returns the id. The
// stored report carries the id; the caller's report is updated in place so
// the status projector can reference it.
func (s *BadgerStore) AppendReport(ctx context.Context, report *models.Report) (string, error) {
	report.ID = uuid.NewString()

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(reportKey(report.Timestamp, report.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("append report: %w", err)
	}
	return report.ID, nil
}

// QueryReports returns reports newest first, optionally filtered by entity
// type and truncated at filter.Limit.
func (s *BadgerStore) QueryReports(ctx context.Context, filter ReportFilter) ([]*models.Report, error) {
	prefix := []byte(reportPrefix)
	var reports []*models.Report

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts past the last key of the prefix.
		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var report models.Report
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &report)
			})
			if err != nil {
				return fmt.Errorf("decode report: %w", err)
			}

			if filter.EntityType != "" && report.EntityType != filter.EntityType {
				continue
			}
			reports = append(reports, &report)
			if filter.Limit > 0 && len(reports) >= filter.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// DeleteReportsOlderThan removes reports stamped before cutoff.
func (s *BadgerStore) DeleteReportsOlderThan(ctx context.Context, cutoff time.Time, entityType string) (int, error) {
	prefix := []byte(reportPrefix)
	var victims [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())

			ts, ok := reportKeyTime(key)
			if !ok {
				continue
			}
			if !ts.Before(cutoff) {
				// Keys are timestamp-ordered; nothing newer can match.
				break
			}

			if entityType != "" {
				var report models.Report
				err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &report)
				})
				if err != nil || report.EntityType != entityType {
					continue
				}
			}
			victims = append(victims, append([]byte{}, item.Key()...))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, key := range victims {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			return 0, fmt.Errorf("delete report %s: %w", key, err)
		}
	}
	return len(victims), nil
}

// reportKeyTime extracts the embedded timestamp from a report key.
func reportKeyTime(key string) (time.Time, bool) {
	rest := strings.TrimPrefix(key, reportPrefix)
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}
