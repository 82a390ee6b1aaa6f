package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	EventAvailabilityUpdated = "calendar.availability.updated.v1"
	EventCreated             = "calendar.event.created.v1"
	EventCancelled           = "calendar.event.cancelled.v1"
)
