package assertions

// LabelActions is the label of the actions assertion.
const LabelActions = "c2pa.actions"

// Standard actions.
const (
	ActionCreated = "c2pa.created"
	ActionPlaced  = "c2pa.placed"
)

// Action is a single entry of the actions assertion.
type Action struct {
	Action        string `cbor:"action" json:"action"`
	SoftwareAgent string `cbor:"softwareAgent,omitempty" json:"softwareAgent,omitempty"`
}

// Actions lists what happened to the asset.
type Actions struct {
	Actions []Action `cbor:"actions" json:"actions"`
}

// NewActions creates an actions assertion holding a single action.
func NewActions(action, softwareAgent string) *Actions {
	return &Actions{Actions: []Action{{Action: action, SoftwareAgent: softwareAgent}}}
}

func (*Actions) Label() string { return LabelActions }

func (a *Actions) Assertion() (*Assertion, error) {
	return EncodeCBOR(LabelActions, a)
}
