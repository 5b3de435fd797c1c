// Package domain defines the core persistent entities, derived projections,
// and rule evaluation primitives used by broodcore.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntitySpecimen identifies an individual specimen record.
	EntitySpecimen EntityType = "specimen"
	// EntityEvent identifies a lifecycle event record.
	EntityEvent EntityType = "lifecycle_event"
)

// Sex enumerates the recorded sex of a specimen.
type Sex string

// Canonical specimen sexes. Unknown is common for juveniles that have not
// been sexed from a molt yet.
const (
	SexMale          Sex = "male"
	SexFemale        Sex = "female"
	SexUnknown       Sex = "unknown"
	SexHermaphrodite Sex = "hermaphrodite"
)

// Stage represents the coarse husbandry life stage of a specimen.
type Stage string

// Canonical life stages kept denormalized for fast list rendering.
const (
	StageBaby     Stage = "baby"
	StageJuvenile Stage = "juvenile"
	StageSubadult Stage = "subadult"
	StageAdult    Stage = "adult"
	StageSenior   Stage = "senior"
)

// EventCategory tags a lifecycle event with its kind.
type EventCategory string

// Event categories recognised by the engine.
const (
	CategoryMolting EventCategory = "molting"
	CategoryMating  EventCategory = "mating"
	CategoryCocoon  EventCategory = "cocoon"
	CategoryFeeding EventCategory = "feeding"
	CategoryOther   EventCategory = "other"
)

// EventStatus describes the workflow state of an event record.
type EventStatus string

// Canonical event statuses.
const (
	EventStatusCompleted  EventStatus = "completed"
	EventStatusScheduled  EventStatus = "scheduled"
	EventStatusCancelled  EventStatus = "cancelled"
	EventStatusInProgress EventStatus = "in_progress"
)

// CocoonState enumerates the cocoon incubation state machine. Hatched and
// failed are absorbing.
type CocoonState string

// Cocoon states, in progression order.
const (
	CocoonLaid       CocoonState = "laid"
	CocoonIncubating CocoonState = "incubating"
	CocoonHatched    CocoonState = "hatched"
	CocoonFailed     CocoonState = "failed"
)

// MatingResult records the observed outcome of a pairing attempt.
type MatingResult string

// Canonical mating results.
const (
	MatingSuccess    MatingResult = "success"
	MatingFailure    MatingResult = "failure"
	MatingInProgress MatingResult = "in_progress"
	MatingUnknown    MatingResult = "unknown"
)

// DateLayout is the ISO-8601 calendar date layout used for all event dates.
// Lexicographic ordering of these strings matches chronological ordering,
// which the projection merge relies on.
const DateLayout = "2006-01-02"

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Measurements keeps the last known body length denormalized on the specimen.
type Measurements struct {
	LengthMM     float64 `json:"length_mm,omitempty"`
	LastMeasured string  `json:"last_measured,omitempty"`
}

// Specimen represents an individual tracked invertebrate.
type Specimen struct {
	Base
	OwnerID        string       `json:"owner_id"`
	Name           string       `json:"name"`
	Species        string       `json:"species"`
	Sex            Sex          `json:"sex"`
	Stage          Stage        `json:"stage"`
	Instar         int          `json:"instar"`
	Measurements   Measurements `json:"measurements"`
	Active         bool         `json:"active"`
	ParentFemaleID *string      `json:"parent_female_id,omitempty"`
	CocoonEventID  *string      `json:"cocoon_event_id,omitempty"`
}

// PhotoRef is an opaque reference to an attached photo. The engine passes
// these through without interpreting image content.
type PhotoRef struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Date   string `json:"date"`
	IsMain bool   `json:"is_main"`
}

// MoltingData is the category payload for molting events. NewStage must be
// strictly greater than PreviousStage.
type MoltingData struct {
	PreviousStage    int      `json:"previous_stage"`
	NewStage         int      `json:"new_stage"`
	PreviousLengthMM *float64 `json:"previous_length_mm,omitempty"`
	NewLengthMM      *float64 `json:"new_length_mm,omitempty"`
}

// MatingData is the category payload for mating events. Successful is a
// derived convenience flag kept alongside Result for simple consumers.
type MatingData struct {
	MaleID     string       `json:"male_id"`
	FemaleID   string       `json:"female_id"`
	Result     MatingResult `json:"result"`
	Successful bool         `json:"successful"`
}

// CocoonData is the category payload for cocoon events. Status and
// HatchedCount are the only event fields ever mutated after append.
type CocoonData struct {
	FemaleID           string      `json:"female_id"`
	Status             CocoonState `json:"status"`
	EstimatedHatchDate string      `json:"estimated_hatch_date,omitempty"`
	EggCount           *int        `json:"egg_count,omitempty"`
	HatchedCount       *int        `json:"hatched_count,omitempty"`
}

// LifecycleEvent is an append-only record of a dated occurrence for one
// specimen. Events are immutable after creation except for the cocoon
// payload's state fields, enforced by the event immutability rule.
type LifecycleEvent struct {
	Base
	SpecimenID  string        `json:"specimen_id"`
	OwnerID     string        `json:"owner_id"`
	Category    EventCategory `json:"category"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	Date        string        `json:"date"`
	Time        *string       `json:"time,omitempty"`
	Status      EventStatus   `json:"status"`
	Importance  string        `json:"importance,omitempty"`
	Molting     *MoltingData  `json:"molting,omitempty"`
	Mating      *MatingData   `json:"mating,omitempty"`
	Cocoon      *CocoonData   `json:"cocoon,omitempty"`
	Photos      []PhotoRef    `json:"photos,omitempty"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported mutations captured for rule evaluation.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
