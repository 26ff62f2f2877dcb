package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/urmzd/lightd/pkg/persist"
)

var _ persist.Gateway = (*DB)(nil)

func (db *DB) LoadDocument(ctx context.Context, key string) (json.RawMessage, bool, error) {
	d, err := db.Documents().Get(ctx, key)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return d.Body, true, nil
}

func (db *DB) SaveDocument(ctx context.Context, key string, doc json.RawMessage) error {
	return db.Documents().Put(ctx, key, doc)
}

func (db *DB) RemoveDocument(ctx context.Context, key string) error {
	return db.Documents().Delete(ctx, key)
}

func (db *DB) ReadScalar(ctx context.Context, key string) (string, bool, error) {
	v, err := db.Scalars().Get(ctx, key)
	if errors.Is(err, ErrScalarNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (db *DB) WriteScalar(ctx context.Context, key, value string) error {
	return db.Scalars().Replace(ctx, key, value)
}

func (db *DB) RemoveScalar(ctx context.Context, key string) error {
	return db.Scalars().Delete(ctx, key)
}
