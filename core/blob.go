package core

import (
	"context"
	"io"
)

// Blob storage folders. Every uploaded binary lives under one of these
// prefixes; the full key is carried inside the BlobRef, never rebuilt from
// the folder constant.
const (
	RecipeImageFolder = "recipe-image"
	AvatarFolder      = "avatar"
)

type (
	// BlobRef identifies one stored binary: the storage key it lives under
	// and the public URL it is served from. The zero value means "no blob".
	// A BlobRef is owned by exactly one entity field (a user's avatar or a
	// recipe's image) at a time.
	BlobRef struct {
		Key string `json:"key,omitempty" bson:"key,omitempty"`
		URL string `json:"url,omitempty" bson:"url,omitempty"`
	}

	// BlobStore defines the binary-object storage the image lifecycle runs
	// against. Delete must return a not-found kinded error for an unknown
	// key so callers can treat repeated deletes as idempotent.
	BlobStore interface {
		Upload(ctx context.Context, r io.Reader, folder, contentType string) (BlobRef, error)
		Delete(ctx context.Context, key string) error
	}

	// CredentialVerifier hashes and checks user secrets.
	CredentialVerifier interface {
		Hash(secret string) (string, error)
		Verify(secret, digest string) bool
	}
)

// IsZero reports whether the reference points at no blob.
func (r BlobRef) IsZero() bool { return r.Key == "" && r.URL == "" }
