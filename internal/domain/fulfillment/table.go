package fulfillment

import (
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// Table gates status changes for one fulfillment type. Three concrete
// instances exist, one per fulfillment type, selected by ForType. Any status
// without an entry is terminal.
type Table interface {
	// Type returns the fulfillment type this table gates.
	Type() string
	// Next returns the legal target statuses from the given status.
	Next(from string) []string
	// Allowed reports whether from -> to is a legal transition.
	Allowed(from, to string) bool
}

type table struct {
	ftype       string
	transitions map[string][]string
}

func (t *table) Type() string { return t.ftype }

func (t *table) Next(from string) []string {
	return t.transitions[from]
}

func (t *table) Allowed(from, to string) bool {
	for _, s := range t.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// insideValley: rider delivery within the Kathmandu valley. assigned -> packed
// walks the dispatch back (rider unassigned before leaving the warehouse).
var insideValley = &table{
	ftype: entity.FulfillmentInsideValley,
	transitions: map[string][]string{
		entity.StatusIntake:          {entity.StatusFollowUp, entity.StatusConverted, entity.StatusCancelled, entity.StatusRejected},
		entity.StatusFollowUp:        {entity.StatusConverted, entity.StatusCancelled, entity.StatusRejected},
		entity.StatusConverted:       {entity.StatusPacked, entity.StatusCancelled},
		entity.StatusPacked:          {entity.StatusAssigned, entity.StatusCancelled},
		entity.StatusAssigned:        {entity.StatusOutForDelivery, entity.StatusPacked, entity.StatusCancelled},
		entity.StatusOutForDelivery:  {entity.StatusDelivered, entity.StatusReturnInitiated, entity.StatusAssigned},
		entity.StatusDelivered:       {entity.StatusReturnInitiated},
		entity.StatusReturnInitiated: {entity.StatusReturned},
	},
}

// outsideValley: third-party courier handover. RTO and lost-in-transit are
// reachable once the parcel is with the courier.
var outsideValley = &table{
	ftype: entity.FulfillmentOutsideValley,
	transitions: map[string][]string{
		entity.StatusIntake:            {entity.StatusFollowUp, entity.StatusConverted, entity.StatusCancelled, entity.StatusRejected},
		entity.StatusFollowUp:          {entity.StatusConverted, entity.StatusCancelled, entity.StatusRejected},
		entity.StatusConverted:         {entity.StatusPacked, entity.StatusCancelled},
		entity.StatusPacked:            {entity.StatusHandoverToCourier, entity.StatusCancelled},
		entity.StatusHandoverToCourier: {entity.StatusInTransit, entity.StatusDelivered, entity.StatusReturnInitiated, entity.StatusRTOInitiated, entity.StatusLostInTransit},
		entity.StatusInTransit:         {entity.StatusDelivered, entity.StatusReturnInitiated, entity.StatusRTOInitiated, entity.StatusLostInTransit},
		entity.StatusDelivered:         {entity.StatusReturnInitiated},
		entity.StatusReturnInitiated:   {entity.StatusReturned},
		entity.StatusRTOInitiated:      {entity.StatusRTOReceived},
	},
}

// store: in-store POS sale. store_sale is the counter handover.
var store = &table{
	ftype: entity.FulfillmentStore,
	transitions: map[string][]string{
		entity.StatusIntake:          {entity.StatusConverted, entity.StatusStoreSale, entity.StatusCancelled, entity.StatusRejected},
		entity.StatusConverted:       {entity.StatusPacked, entity.StatusStoreSale, entity.StatusCancelled},
		entity.StatusPacked:          {entity.StatusStoreSale, entity.StatusCancelled},
		entity.StatusStoreSale:       {entity.StatusDelivered},
		entity.StatusDelivered:       {entity.StatusReturnInitiated},
		entity.StatusReturnInitiated: {entity.StatusReturned},
	},
}

// ForType returns the transition table for the given fulfillment type.
func ForType(ftype string) (Table, error) {
	switch ftype {
	case entity.FulfillmentInsideValley:
		return insideValley, nil
	case entity.FulfillmentOutsideValley:
		return outsideValley, nil
	case entity.FulfillmentStore:
		return store, nil
	}
	return nil, &domain.ValidationError{Field: "fulfillment_type", Message: "unknown fulfillment type " + ftype}
}
