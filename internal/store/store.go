package store

import (
	"context"
	"encoding/json"
	"strings"
)

// Document : entrée brute d'une collection, telle que rendue par le store
type Document struct {
	Path string
	Data json.RawMessage
}

// ListOptions : bornes de lecture d'une collection.
// Before est une borne haute exclusive sur created_at (epoch millis),
// 0 = depuis le début. Limit <= 0 = tout.
type ListOptions struct {
	Before int64
	Limit  int
}

// Store : contrat du document store hiérarchique.
// Chemins utilisés : posts/{postID}, likes/{postID}/{userID},
// comments/{postID}/{commentID}, users/{userID}.
// Chaque document porte un champ JSON created_at en epoch millis.
type Store interface {
	// Get : lecture ponctuelle, décode le document dans out
	Get(ctx context.Context, path string, out interface{}) error
	// List : lecture des enfants d'une collection, ordonnée created_at décroissant
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)
	// Query : lecture filtrée par égalité sur un champ JSON de premier niveau
	Query(ctx context.Context, collection, field, value string) ([]Document, error)
	// Write : upsert d'une clé unique
	Write(ctx context.Context, path string, value interface{}) error
	// Delete : suppression d'une clé unique
	Delete(ctx context.Context, path string) error
	// Count : cardinalité d'une collection
	Count(ctx context.Context, collection string) (int64, error)
}

// timestamped sert à extraire created_at des documents écrits
type timestamped struct {
	CreatedAt int64 `json:"created_at"`
}

func createdAtOf(data []byte) int64 {
	var ts timestamped
	if err := json.Unmarshal(data, &ts); err != nil {
		return 0
	}
	return ts.CreatedAt
}

// collectionOf : "likes/p1/u1" -> "likes/p1"
func collectionOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}
