package ride

import (
	"fmt"
	"slices"

	"rideshare-backend/internal/model"
)

// Operation names a lifecycle operation.
type Operation string

const (
	OpCreate        Operation = "create"
	OpGet           Operation = "get"
	OpAccept        Operation = "accept"
	OpCancelOffer   Operation = "cancel_offer"
	OpCancelRequest Operation = "cancel_request"
	OpFinish        Operation = "finish"
	OpEdit          Operation = "edit"
)

// relation is how the acting user must relate to the ride.
type relation int

const (
	relRequester relation = iota
	relAccepter
	relNonRequester
	relParticipant
)

func (r relation) holds(ride *model.Ride, actorID string) bool {
	switch r {
	case relRequester:
		return ride.RequesterID == actorID
	case relAccepter:
		return ride.IsAccepter(actorID)
	case relNonRequester:
		return ride.RequesterID != actorID
	case relParticipant:
		return ride.RequesterID == actorID || ride.IsAccepter(actorID)
	}
	return false
}

type accepterChange int

const (
	accepterKeep accepterChange = iota
	accepterSetActor
	accepterClear
)

type recipient int

const (
	recipientNone recipient = iota
	recipientRequester
	recipientAccepter
	recipientOtherParty
)

type notice struct {
	to    recipient
	kind  model.NotificationType
	title string
	// body is a format taking the ride origin and destination.
	body  string
}

// rule is one row of the lifecycle table. An empty target leaves the status as is.
type rule struct {
	actor    relation
	from     []model.RideStatus
	target   model.RideStatus
	accepter accepterChange
	edit     bool
	notice   notice
}

var rules = map[Operation]rule{
	OpAccept: {
		actor:    relNonRequester,
		from:     []model.RideStatus{model.RideStatusPending},
		target:   model.RideStatusAccepted,
		accepter: accepterSetActor,
		notice: notice{
			to:    recipientRequester,
			kind:  model.NotificationRideAccepted,
			title: "Ride accepted",
			body:  "Your ride from %s to %s has been accepted.",
		},
	},
	OpCancelOffer: {
		actor:    relAccepter,
		from:     []model.RideStatus{model.RideStatusAccepted},
		target:   model.RideStatusPending,
		accepter: accepterClear,
		notice: notice{
			to:    recipientRequester,
			kind:  model.NotificationOfferWithdrawn,
			title: "Offer withdrawn",
			body:  "The offer for your ride from %s to %s was withdrawn. The ride is open again.",
		},
	},
	OpCancelRequest: {
		actor:    relRequester,
		from:     []model.RideStatus{model.RideStatusPending, model.RideStatusAccepted},
		target:   model.RideStatusCancelled,
		accepter: accepterClear,
		notice: notice{
			to:    recipientAccepter,
			kind:  model.NotificationRideCancelled,
			title: "Ride cancelled",
			body:  "The ride from %s to %s was cancelled by its requester.",
		},
	},
	OpFinish: {
		actor:  relParticipant,
		from:   []model.RideStatus{model.RideStatusAccepted},
		target: model.RideStatusCompleted,
		notice: notice{
			to:    recipientOtherParty,
			kind:  model.NotificationRideCompleted,
			title: "Ride completed",
			body:  "The ride from %s to %s was marked as completed.",
		},
	},
	OpEdit: {
		actor: relRequester,
		from:  []model.RideStatus{model.RideStatusPending},
		edit:  true,
	},
}

func (r rule) allows(status model.RideStatus) bool {
	return slices.Contains(r.from, status)
}

// recipientOf resolves the user to notify from the ride as it was before the write,
// so an accepter cleared by the transition is still reached. An empty result means
// nobody is notified.
func (n notice) recipientOf(ride *model.Ride, actorID string) string {
	switch n.to {
	case recipientRequester:
		return ride.RequesterID
	case recipientAccepter:
		if ride.HasAccepter() {
			return *ride.AccepterID
		}
	case recipientOtherParty:
		if ride.RequesterID == actorID {
			if ride.HasAccepter() {
				return *ride.AccepterID
			}
			return ""
		}
		return ride.RequesterID
	}
	return ""
}

func (n notice) text(ride *model.Ride) string {
	return fmt.Sprintf(n.body, ride.Details.Origin, ride.Details.Destination)
}
