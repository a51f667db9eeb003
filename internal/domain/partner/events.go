package partner

import (
	"github.com/florexport/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerCreatedEvent is raised when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
}

// EventType returns the event type name
func (e *CustomerCreatedEvent) EventType() string {
	return "CustomerCreated"
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CustomerCreated", "Customer", c.ID),
		CustomerID:      c.ID,
		Code:            c.Code,
		Name:            c.Name,
	}
}

// CustomerUpdatedEvent is raised when a customer is updated
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
}

// EventType returns the event type name
func (e *CustomerUpdatedEvent) EventType() string {
	return "CustomerUpdated"
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(c *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CustomerUpdated", "Customer", c.ID),
		CustomerID:      c.ID,
		Code:            c.Code,
		Name:            c.Name,
	}
}

// FarmCreatedEvent is raised when a new farm is created
type FarmCreatedEvent struct {
	shared.BaseDomainEvent
	FarmID uuid.UUID `json:"farm_id"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
}

// EventType returns the event type name
func (e *FarmCreatedEvent) EventType() string {
	return "FarmCreated"
}

// NewFarmCreatedEvent creates a new FarmCreatedEvent
func NewFarmCreatedEvent(f *Farm) *FarmCreatedEvent {
	return &FarmCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FarmCreated", "Farm", f.ID),
		FarmID:          f.ID,
		Code:            f.Code,
		Name:            f.Name,
	}
}

// FarmUpdatedEvent is raised when a farm is updated
type FarmUpdatedEvent struct {
	shared.BaseDomainEvent
	FarmID uuid.UUID `json:"farm_id"`
	Code   string    `json:"code"`
	Name   string    `json:"name"`
}

// EventType returns the event type name
func (e *FarmUpdatedEvent) EventType() string {
	return "FarmUpdated"
}

// NewFarmUpdatedEvent creates a new FarmUpdatedEvent
func NewFarmUpdatedEvent(f *Farm) *FarmUpdatedEvent {
	return &FarmUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("FarmUpdated", "Farm", f.ID),
		FarmID:          f.ID,
		Code:            f.Code,
		Name:            f.Name,
	}
}
