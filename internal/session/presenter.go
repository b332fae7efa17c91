package session

import (
	"stasher/internal/booking"
	"stasher/internal/domain"
	"stasher/internal/dto"
	"stasher/internal/stashpoint"
)

func newStateResponse(id string, s booking.State) dto.StateResponse {
	resp := dto.StateResponse{
		SessionID: id,
		Cart:      dto.NewCartResponse(s.Cart),
		Stashpoints: dto.NewStatusResponse(s.Stashpoints, func(list []domain.Stashpoint) []dto.StashpointResponse {
			out := make([]dto.StashpointResponse, len(list))
			for i, sp := range list {
				out[i] = dto.NewStashpointResponse(sp)
			}
			return out
		}),
		Quote:   dto.NewStatusResponse(s.Quote, dto.NewPriceQuoteResponse),
		Booking: dto.NewStatusResponse(s.Booking, dto.NewBookingResponse),
	}
	if sp, ok := s.SelectedStashpoint(); ok {
		selected := dto.NewStashpointResponse(sp)
		resp.SelectedStashpoint = &selected
	}
	return resp
}

func newStashpointListResponse(f stashpoint.Filter, rows []stashpoint.Row) dto.StashpointListResponse {
	out := dto.StashpointListResponse{
		Property: string(f.Property),
		Order:    string(f.Order),
		Rows:     make([]dto.StashpointRowResponse, len(rows)),
	}
	for i, row := range rows {
		out.Rows[i] = dto.StashpointRowResponse{
			StashpointResponse: dto.NewStashpointResponse(row.Stashpoint),
			Selected:           row.Selected,
		}
	}
	return out
}
