package farm

// Timestamps are nanoseconds since the Unix epoch, as produced by Clock.

type Crop struct {
	ID          uint64  `msgpack:"id" json:"id" yaml:"id"`
	Name        string  `msgpack:"n" json:"name" yaml:"name"`
	Description string  `msgpack:"d" json:"description" yaml:"description"`
	Quantity    uint32  `msgpack:"q" json:"quantity" yaml:"quantity"`
	CreatedAt   uint64  `msgpack:"c" json:"created_at" yaml:"created_at"`
	UpdatedAt   *uint64 `msgpack:"u,omitempty" json:"updated_at" yaml:"updated_at"`
}

type Task struct {
	ID          uint64 `msgpack:"id" json:"id" yaml:"id"`
	Name        string `msgpack:"n" json:"name" yaml:"name"`
	Description string `msgpack:"d" json:"description" yaml:"description"`
	Completed   bool   `msgpack:"x" json:"completed" yaml:"completed"`
	CropID      uint64 `msgpack:"crop" json:"crop_id" yaml:"crop_id"`
	CreatedAt   uint64 `msgpack:"c" json:"created_at" yaml:"created_at"`
}

// Expense.CropID is optional: expenses recorded before crops were tracked
// per expense don't carry one.
type Expense struct {
	ID          uint64  `msgpack:"id" json:"id" yaml:"id"`
	Description string  `msgpack:"d" json:"description" yaml:"description"`
	Amount      float64 `msgpack:"a" json:"amount" yaml:"amount"`
	Timestamp   uint64  `msgpack:"t" json:"timestamp" yaml:"timestamp"`
	CropID      *uint64 `msgpack:"crop,omitempty" json:"crop_id,omitempty" yaml:"crop_id,omitempty"`
}

type CropPayload struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Quantity    uint32 `json:"quantity" yaml:"quantity"`
}

// CropUpdate changes only the non-nil fields.
type CropUpdate struct {
	Name        *string `json:"name,omitempty" yaml:"name,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity    *uint32 `json:"quantity,omitempty" yaml:"quantity,omitempty"`
}

type TaskPayload struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	CropID      uint64 `json:"crop_id" yaml:"crop_id"`
}

// TaskUpdate changes only the non-nil fields.
type TaskUpdate struct {
	Name        *string `json:"name,omitempty" yaml:"name,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	CropID      *uint64 `json:"crop_id,omitempty" yaml:"crop_id,omitempty"`
}

type ExpensePayload struct {
	Description string  `json:"description" yaml:"description"`
	Amount      float64 `json:"amount" yaml:"amount"`
	CropID      *uint64 `json:"crop_id,omitempty" yaml:"crop_id,omitempty"`
}

// ExpenseUpdate changes only the non-nil fields. The crop reference of an
// expense is fixed at creation.
type ExpenseUpdate struct {
	Description *string  `json:"description,omitempty" yaml:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// TimeRange is an inclusive window of creation timestamps.
type TimeRange struct {
	Start uint64 `json:"start" yaml:"start"`
	End   uint64 `json:"end" yaml:"end"`
}

func (r TimeRange) Contains(ts uint64) bool {
	return ts >= r.Start && ts <= r.End
}

type CropQuery struct {
	Query       string     `json:"query" yaml:"query"`
	MinQuantity *uint32    `json:"min_quantity,omitempty" yaml:"min_quantity,omitempty"`
	Created     *TimeRange `json:"created,omitempty" yaml:"created,omitempty"`
}
