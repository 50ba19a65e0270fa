package http

import (
	"time"

	"github.com/Sphe667/ViewLab/internal/lab"
	"github.com/Sphe667/ViewLab/internal/pkg/request"
)

// ListLabsRequest defines query parameters for listing labs.
type ListLabsRequest struct {
	request.ListParams
	Query string `form:"q" binding:"omitempty,max=100"`
}

// LabTag is the short lab reference embedded in other responses.
type LabTag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LabResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ComputerCount int       `json:"computer_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewLabResponse(l *lab.Lab) LabResponse {
	return LabResponse{
		ID:            l.ID,
		Name:          l.Name,
		ComputerCount: l.ComputerCount,
		CreatedAt:     l.CreatedAt,
	}
}

type ComputerResponse struct {
	ID       int64  `json:"id"`
	Number   int    `json:"number"`
	Lab      LabTag `json:"lab"`
	IsBooked bool   `json:"is_booked"`
}

func NewComputerResponse(c *lab.Computer) ComputerResponse {
	return ComputerResponse{
		ID:       c.ID,
		Number:   c.Number,
		Lab:      LabTag{ID: c.LabID, Name: c.LabName},
		IsBooked: c.IsBooked,
	}
}

func NewComputerResponses(computers []*lab.Computer) []ComputerResponse {
	items := make([]ComputerResponse, len(computers))
	for i, c := range computers {
		items[i] = NewComputerResponse(c)
	}
	return items
}

type LabDetailsResponse struct {
	LabResponse
	AvailableCount int                `json:"available_count"`
	Computers      []ComputerResponse `json:"computers"`
}

func NewLabDetailsResponse(l *lab.Lab, computers []*lab.Computer) LabDetailsResponse {
	return LabDetailsResponse{
		LabResponse:    NewLabResponse(l),
		AvailableCount: l.AvailableCount,
		Computers:      NewComputerResponses(computers),
	}
}
