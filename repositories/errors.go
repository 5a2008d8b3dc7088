package repositories

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound      = errors.New("document not found")
	ErrDuplicateSlug = errors.New("slug already in use")
	ErrDuplicateKey  = errors.New("duplicate key")
)

const queryTimeout = 10 * time.Second

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateKey
	}
	return err
}

// translateSlug is translate for collections whose only unique index is slug.
func translateSlug(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateSlug
	}
	return translate(err)
}
