package core

import "broodcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Sex                = domain.Sex
	Stage              = domain.Stage
	EventCategory      = domain.EventCategory
	EventStatus        = domain.EventStatus
	CocoonState        = domain.CocoonState
	MatingResult       = domain.MatingResult
	Specimen           = domain.Specimen
	LifecycleEvent     = domain.LifecycleEvent
	PhotoRef           = domain.PhotoRef
	MoltingData        = domain.MoltingData
	MatingData         = domain.MatingData
	CocoonData         = domain.CocoonData
	MatingStatus       = domain.MatingStatus
	CocoonStatus       = domain.CocoonStatus
	MoltStatus         = domain.MoltStatus
	FeedingStatus      = domain.FeedingStatus
	ValidationError    = domain.ValidationError
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	Rule               = domain.Rule
	RuleViolationError = domain.RuleViolationError
	EventQuery         = domain.EventQuery
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntitySpecimen = domain.EntitySpecimen
	EntityEvent    = domain.EntityEvent
)

const (
	SexMale          = domain.SexMale
	SexFemale        = domain.SexFemale
	SexUnknown       = domain.SexUnknown
	SexHermaphrodite = domain.SexHermaphrodite
)

const (
	StageBaby     = domain.StageBaby
	StageJuvenile = domain.StageJuvenile
	StageSubadult = domain.StageSubadult
	StageAdult    = domain.StageAdult
	StageSenior   = domain.StageSenior
)

const (
	CategoryMolting = domain.CategoryMolting
	CategoryMating  = domain.CategoryMating
	CategoryCocoon  = domain.CategoryCocoon
	CategoryFeeding = domain.CategoryFeeding
	CategoryOther   = domain.CategoryOther
)

const (
	CocoonLaid       = domain.CocoonLaid
	CocoonIncubating = domain.CocoonIncubating
	CocoonHatched    = domain.CocoonHatched
	CocoonFailed     = domain.CocoonFailed
)

const (
	MatingSuccess    = domain.MatingSuccess
	MatingFailure    = domain.MatingFailure
	MatingInProgress = domain.MatingInProgress
	MatingUnknown    = domain.MatingUnknown
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine constructs an empty rules engine.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }
