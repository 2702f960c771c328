package handler

import (
	"github.com/hallgrim/dayplan/internal/api"
	"github.com/hallgrim/dayplan/internal/storage/sql/repository"
)

func itemToDTO(item repository.Item) api.ItemDTO {
	return api.ItemDTO{
		ID:                item.ID,
		Text:              item.Text,
		Completed:         item.Completed,
		Priority:          item.Priority,
		DueDate:           item.DueAt,
		Position:          item.Position,
		IsRecurring:       item.Recurring,
		RecurrencePattern: item.Recurrence,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
		Version:           item.Version,
	}
}

func itemsToDTOs(items []repository.Item) []api.ItemDTO {
	out := make([]api.ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, itemToDTO(item))
	}
	return out
}

func listToDTO(list repository.List, items []repository.Item) api.ListDTO {
	return api.ListDTO{
		ID:        list.ID,
		Title:     list.Title,
		Items:     itemsToDTOs(items),
		CreatedAt: list.CreatedAt,
	}
}
