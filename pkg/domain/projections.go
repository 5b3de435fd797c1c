package domain

// Derived projections are computed on read from the latest matching event and
// are never persisted. Re-reading a projection without an intervening write
// yields an identical result.

// MatingStatus summarises the most recent mating event for a specimen.
type MatingStatus struct {
	HasMating      bool         `json:"has_mating"`
	LastMatingDate string       `json:"last_mating_date,omitempty"`
	LastResult     MatingResult `json:"last_result,omitempty"`
}

// CocoonStatus summarises the most recent cocoon event for a specimen.
type CocoonStatus struct {
	HasCocoon          bool        `json:"has_cocoon"`
	LastCocoonDate     string      `json:"last_cocoon_date,omitempty"`
	State              CocoonState `json:"state,omitempty"`
	EstimatedHatchDate string      `json:"estimated_hatch_date,omitempty"`
}

// MoltStatus summarises the most recent molt for a specimen.
type MoltStatus struct {
	HasMolt      bool   `json:"has_molt"`
	LastMoltDate string `json:"last_molt_date,omitempty"`
	Instar       int    `json:"instar,omitempty"`
}

// FeedingStatus summarises the most recent feeding for a specimen.
type FeedingStatus struct {
	HasFeeding  bool   `json:"has_feeding"`
	LastFedDate string `json:"last_fed_date,omitempty"`
}

// ProjectMatingStatus derives the mating status from a single latest event.
func ProjectMatingStatus(ev LifecycleEvent) MatingStatus {
	status := MatingStatus{HasMating: true, LastMatingDate: ev.Date}
	if ev.Mating != nil {
		status.LastResult = ev.Mating.Result
	}
	return status
}

// ProjectCocoonStatus derives the cocoon status from a single latest event.
func ProjectCocoonStatus(ev LifecycleEvent) CocoonStatus {
	status := CocoonStatus{HasCocoon: true, LastCocoonDate: ev.Date}
	if ev.Cocoon != nil {
		status.State = ev.Cocoon.Status
		status.EstimatedHatchDate = ev.Cocoon.EstimatedHatchDate
	}
	return status
}

// ProjectMoltStatus derives the molt status from a single latest event.
func ProjectMoltStatus(ev LifecycleEvent) MoltStatus {
	status := MoltStatus{HasMolt: true, LastMoltDate: ev.Date}
	if ev.Molting != nil {
		status.Instar = ev.Molting.NewStage
	}
	return status
}

// ProjectFeedingStatus derives the feeding status from a single latest event.
func ProjectFeedingStatus(ev LifecycleEvent) FeedingStatus {
	return FeedingStatus{HasFeeding: true, LastFedDate: ev.Date}
}
