package enums

import (
	"fmt"
	"sort"
	"strings"
)

// OrderStatus is the display label of a remote order status code.
type OrderStatus string

const (
	OrderStatusPaid         OrderStatus = "PAID"
	OrderStatusUndischarged OrderStatus = "UNDISCHARGED"
	OrderStatusPending      OrderStatus = "PENDING"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
	OrderStatusCompleted    OrderStatus = "COMPLETED"
	OrderStatusDelivered    OrderStatus = "DELIVERED"

	// OrderStatusUnknown is returned for codes outside the configured table.
	OrderStatusUnknown OrderStatus = "UNKNOWN"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusUndischarged,
	OrderStatusPending,
	OrderStatusCancelled,
	OrderStatusCompleted,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is one of the six lifecycle labels.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus. Matching ignores case.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

var defaultStatusCodes = map[int]OrderStatus{
	0: OrderStatusPaid,
	1: OrderStatusUndischarged,
	2: OrderStatusPending,
	3: OrderStatusCancelled,
	4: OrderStatusCompleted,
	5: OrderStatusDelivered,
}

// StatusTable maps remote integer codes to labels. It is injective in both directions.
type StatusTable struct {
	byCode  map[int]OrderStatus
	byLabel map[OrderStatus]int
}

// DefaultStatusTable returns {0:PAID,1:UNDISCHARGED,2:PENDING,3:CANCELLED,4:COMPLETED,5:DELIVERED}.
func DefaultStatusTable() StatusTable {
	table := StatusTable{
		byCode:  make(map[int]OrderStatus, len(defaultStatusCodes)),
		byLabel: make(map[OrderStatus]int, len(defaultStatusCodes)),
	}
	for code, label := range defaultStatusCodes {
		table.byCode[code] = label
		table.byLabel[label] = code
	}
	return table
}

// NewStatusTable builds a table from label→code pairs. An empty input yields the
// default table. A non-empty input must map all six labels to distinct codes.
func NewStatusTable(codes map[string]int) (StatusTable, error) {
	if len(codes) == 0 {
		return DefaultStatusTable(), nil
	}
	table := StatusTable{
		byCode:  make(map[int]OrderStatus, len(codes)),
		byLabel: make(map[OrderStatus]int, len(codes)),
	}

	labels := make([]string, 0, len(codes))
	for raw := range codes {
		labels = append(labels, raw)
	}
	sort.Strings(labels)

	for _, raw := range labels {
		label, err := ParseOrderStatus(raw)
		if err != nil {
			return StatusTable{}, err
		}
		code := codes[raw]
		if _, dup := table.byLabel[label]; dup {
			return StatusTable{}, fmt.Errorf("order status %s mapped twice", label)
		}
		if prev, dup := table.byCode[code]; dup {
			return StatusTable{}, fmt.Errorf("order status code %d mapped to both %s and %s", code, prev, label)
		}
		table.byCode[code] = label
		table.byLabel[label] = code
	}
	if missing := table.missingLabels(); len(missing) > 0 {
		return StatusTable{}, fmt.Errorf("order status table must map every label, missing %s", strings.Join(missing, ", "))
	}
	return table, nil
}

func (t StatusTable) missingLabels() []string {
	var missing []string
	for _, label := range validOrderStatuses {
		if _, ok := t.byLabel[label]; !ok {
			missing = append(missing, string(label))
		}
	}
	return missing
}

// Label resolves a remote code. Unknown codes return (OrderStatusUnknown, false).
func (t StatusTable) Label(code int) (OrderStatus, bool) {
	label, ok := t.byCode[code]
	if !ok {
		return OrderStatusUnknown, false
	}
	return label, true
}

// Code returns the remote code for label.
func (t StatusTable) Code(label OrderStatus) (int, bool) {
	code, ok := t.byLabel[label]
	return code, ok
}

// Codes lists the mapped codes in ascending order.
func (t StatusTable) Codes() []int {
	out := make([]int, 0, len(t.byCode))
	for code := range t.byCode {
		out = append(out, code)
	}
	sort.Ints(out)
	return out
}
