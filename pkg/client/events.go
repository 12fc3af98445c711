package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/naveenspark/eventview/pkg/domain"
)

type searchRequest struct {
	Filters []domain.Filter `json:"filters"`
}

// SearchEvents returns one page of events matching every filter. Pages are
// 1-indexed. first pins pagination to the newest event of the first page
// so new arrivals do not shift later pages.
func (c *Client) SearchEvents(ctx context.Context, filters []domain.Filter, page int, first string) ([]domain.Event, error) {
	params := url.Values{}
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))
	if first != "" {
		params.Set("first", first)
	}
	if filters == nil {
		filters = []domain.Filter{}
	}

	var events []domain.Event
	if err := c.post(ctx, "/events?"+params.Encode(), searchRequest{Filters: filters}, &events); err != nil {
		return nil, fmt.Errorf("client.SearchEvents: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// GetEvent fetches a single event by its hex ID.
func (c *Client) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	if err := c.get(ctx, "/events/by-id/"+url.PathEscape(id), &event); err != nil {
		return nil, fmt.Errorf("client.GetEvent: %w", err)
	}
	return &event, nil
}
