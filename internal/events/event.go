package events

// PlatformOutcome is the per-storefront result attached to sync events.
type PlatformOutcome struct {
	Success    bool   `json:"success"`
	ExternalID int64  `json:"external_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ============================================================================
// Customer events
// ============================================================================

// CustomerSynced fires after a customer upsert and its storefront fan-out
// complete, regardless of per-site outcomes.
type CustomerSynced struct {
	BaseEvent
	PersonDocumentID string                     `json:"person_document_id"`
	RUT              string                     `json:"rut"`
	Created          bool                       `json:"created"`
	Platforms        map[string]PlatformOutcome `json:"platforms"`
}

func (e CustomerSynced) EventName() string { return "customers.synced" }

// ============================================================================
// Order events
// ============================================================================

// OrderCreated fires after an order is written to the CMS and fanned out.
type OrderCreated struct {
	BaseEvent
	OrderDocumentID  string                     `json:"order_document_id"`
	PersonDocumentID string                     `json:"person_document_id"`
	Total            float64                    `json:"total"`
	Currency         string                     `json:"currency"`
	Platforms        map[string]PlatformOutcome `json:"platforms"`
}

func (e OrderCreated) EventName() string { return "orders.created" }

// ============================================================================
// School import events
// ============================================================================

// SchoolsImported fires after a spreadsheet import run finishes.
type SchoolsImported struct {
	BaseEvent
	RunID    string `json:"run_id"`
	FileName string `json:"file_name"`
	Total    int    `json:"total"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
	Failed   int    `json:"failed"`
}

func (e SchoolsImported) EventName() string { return "schools.imported" }
