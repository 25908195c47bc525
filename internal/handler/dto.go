package handler

import (
	"time"

	"github.com/msomdec/photolog/internal/domain"
	"github.com/msomdec/photolog/internal/service"
)

// EntryDTO is the JSON representation of a catalog entry in list responses.
// The image payload is omitted; clients fetch it from the image endpoint.
type EntryDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	ContentType string            `json:"contentType"`
	Size        int               `json:"size"`
	Date        string            `json:"date"`
	Location    domain.Coordinate `json:"location"`
}

func toEntryDTO(e domain.CatalogEntry) EntryDTO {
	return EntryDTO{
		ID:          e.ID,
		Title:       e.Title,
		ContentType: e.ContentType,
		Size:        len(e.Image),
		Date:        e.CreatedDate.String(),
		Location:    e.Location,
	}
}

func toEntryDTOs(entries []domain.CatalogEntry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

// EntryDetailDTO is the full record handed across the detail/navigation
// boundary, image payload included (base64 in JSON).
type EntryDetailDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Image       []byte            `json:"image"`
	ContentType string            `json:"contentType"`
	Date        string            `json:"date"`
	Location    domain.Coordinate `json:"location"`
}

func toEntryDetailDTO(e domain.CatalogEntry) EntryDetailDTO {
	return EntryDetailDTO{
		ID:          e.ID,
		Title:       e.Title,
		Image:       e.Image,
		ContentType: e.ContentType,
		Date:        e.CreatedDate.String(),
		Location:    e.Location,
	}
}

// PendingDecisionDTO is the JSON representation of a delete confirmation
// awaiting an answer.
type PendingDecisionDTO struct {
	Token     string `json:"token"`
	EntryID   string `json:"entryId"`
	Prompt    string `json:"prompt"`
	CreatedAt string `json:"createdAt"`
}

func toPendingDecisionDTO(p service.PendingDecision) PendingDecisionDTO {
	return PendingDecisionDTO{
		Token:     p.Token,
		EntryID:   p.EntryID,
		Prompt:    p.Prompt,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func toPendingDecisionDTOs(ps []service.PendingDecision) []PendingDecisionDTO {
	dtos := make([]PendingDecisionDTO, len(ps))
	for i, p := range ps {
		dtos[i] = toPendingDecisionDTO(p)
	}
	return dtos
}
