package enums

// Affordance is an action offered on an order given its current status.
type Affordance string

const (
	AffordanceCancel        Affordance = "cancel"
	AffordancePay           Affordance = "pay"
	AffordanceDeliver       Affordance = "deliver"
	AffordanceComplete      Affordance = "complete"
	AffordanceLeaveFeedback Affordance = "leave_feedback"
	AffordanceEditFeedback  Affordance = "edit_feedback"
	AffordanceViewFeedback  Affordance = "view_feedback"
)

// String implements fmt.Stringer.
func (a Affordance) String() string {
	return string(a)
}
