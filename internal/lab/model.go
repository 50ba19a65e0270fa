package lab

import (
	"errors"
	"net/http"
	"time"

	"github.com/Sphe667/ViewLab/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "lab not found")
	ErrComputerNotFound     = apperror.New(http.StatusNotFound, "computer not found")
	ErrComputerUnavailable  = apperror.New(http.StatusConflict, "computer is already booked")
	ErrEmptyName            = apperror.New(http.StatusBadRequest, "lab name cannot be empty")
	ErrInvalidComputerCount = apperror.New(http.StatusBadRequest, "computer count must be positive")

	// ErrComputerStateConflict means a computer was freed while not booked.
	// The ledger and the flag disagree; the enclosing transaction must abort.
	ErrComputerStateConflict = errors.New("computer booking flag out of sync")
)

// Lab is a room holding a fixed set of computers.
type Lab struct {
	ID             int64
	Name           string
	ComputerCount  int
	AvailableCount int // Only filled by GetLab; list views stay topology-only.
	CreatedAt      time.Time
}

// Computer is a bookable seat in exactly one lab.
type Computer struct {
	ID        int64
	LabID     int64
	LabName   string
	Number    int // 1-based position inside the lab
	IsBooked  bool
	CreatedAt time.Time
}

// Filter defines parameters for listing labs.
type Filter struct {
	Name     string // case-insensitive substring
	Page     int
	PageSize int
}

// SeedLab is one entry of the provisioning input.
type SeedLab struct {
	Name      string `yaml:"name"`
	Computers int    `yaml:"computers"`
}

// ProvisionResult summarizes what Provision changed.
type ProvisionResult struct {
	LabsCreated    int
	ComputersAdded int
}
