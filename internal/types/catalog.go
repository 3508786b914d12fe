package types

import (
	"github.com/google/uuid"

	"github.com/pageza/recipe-api/internal/models"
)

// NamedRef refers to a tag or ingredient by name inside a recipe body.
type NamedRef struct {
	Name string `json:"name" binding:"required,max=255"`
}

// CatalogRequest creates or renames a tag or ingredient.
type CatalogRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// PatchCatalogRequest renames a tag or ingredient if name is present.
type PatchCatalogRequest struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

// CatalogResponse is the wire form of a tag or ingredient.
type CatalogResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func NewCatalogResponse[T models.CatalogEntry](entry T) CatalogResponse {
	return CatalogResponse{ID: entry.PrimaryKey(), Name: entry.Label()}
}

func NewCatalogResponses[T models.CatalogEntry](entries []T) []CatalogResponse {
	out := make([]CatalogResponse, len(entries))
	for i, e := range entries {
		out[i] = NewCatalogResponse(e)
	}
	return out
}

// Names extracts the names from refs, preserving order.
func Names(refs []NamedRef) []string {
	if refs == nil {
		return nil
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}
