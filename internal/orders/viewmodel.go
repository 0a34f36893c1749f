package orders

import (
	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
)

// View is an order as rendered for a specific viewer.
type View struct {
	iotfarm.Order
	StatusLabel enums.OrderStatus  `json:"statusLabel"`
	Affordances []enums.Affordance `json:"affordances"`
	Details     []DetailView       `json:"details"`
}

// DetailView pairs an order line with its feedback affordances. Feedback is set when
// the line has already been reviewed.
type DetailView struct {
	OrderDetailID string             `json:"orderDetailId"`
	ProductName   string             `json:"productName"`
	Affordances   []enums.Affordance `json:"affordances"`
	Feedback      *iotfarm.Feedback  `json:"feedback,omitempty"`
}

// ViewModel derives labels and actions from remote status codes. It never performs I/O.
type ViewModel struct {
	table enums.StatusTable
}

func NewViewModel(table enums.StatusTable) ViewModel {
	return ViewModel{table: table}
}

// StatusLabel maps a remote code to its label; unknown codes return (UNKNOWN, false).
func (vm ViewModel) StatusLabel(code int) (enums.OrderStatus, bool) {
	return vm.table.Label(code)
}

// Affordances lists the order-level actions the viewer may take.
func (vm ViewModel) Affordances(order iotfarm.Order, viewer session.Session) []enums.Affordance {
	label, ok := vm.StatusLabel(order.Status)
	if !ok {
		return []enums.Affordance{}
	}
	out := []enums.Affordance{}
	switch label {
	case enums.OrderStatusUndischarged, enums.OrderStatusPending:
		out = append(out, enums.AffordanceCancel, enums.AffordancePay)
	case enums.OrderStatusPaid:
		if viewer.Role == enums.RoleStaff {
			out = append(out, enums.AffordanceDeliver)
		}
	case enums.OrderStatusDelivered:
		if viewer.Role == enums.RoleStaff {
			out = append(out, enums.AffordanceComplete)
		}
	}
	return out
}

// Decorate builds the full view. feedback is keyed by order detail id and is only
// consulted for COMPLETED orders; a nil map means feedback state is unknown and no
// feedback actions are offered.
func (vm ViewModel) Decorate(order iotfarm.Order, viewer session.Session, feedback map[string]iotfarm.Feedback) View {
	label, _ := vm.StatusLabel(order.Status)
	view := View{
		Order:       order,
		StatusLabel: label,
		Affordances: vm.Affordances(order, viewer),
		Details:     make([]DetailView, 0, len(order.OrderItems)),
	}

	for i, item := range order.OrderItems {
		detail := DetailView{
			ProductName: item.ProductName,
			Affordances: []enums.Affordance{},
		}
		if i < len(order.OrderDetailIDs) {
			detail.OrderDetailID = order.OrderDetailIDs[i]
		}
		if label == enums.OrderStatusCompleted && feedback != nil && detail.OrderDetailID != "" {
			if existing, ok := feedback[detail.OrderDetailID]; ok {
				fb := existing
				detail.Feedback = &fb
				detail.Affordances = append(detail.Affordances, enums.AffordanceEditFeedback, enums.AffordanceViewFeedback)
			} else {
				detail.Affordances = append(detail.Affordances, enums.AffordanceLeaveFeedback)
			}
		}
		view.Details = append(view.Details, detail)
	}
	return view
}

// FeedbackIndex keys feedback by order detail id.
func FeedbackIndex(list []iotfarm.Feedback) map[string]iotfarm.Feedback {
	out := make(map[string]iotfarm.Feedback, len(list))
	for _, fb := range list {
		if fb.OrderDetailID == "" {
			continue
		}
		out[fb.OrderDetailID] = fb
	}
	return out
}
