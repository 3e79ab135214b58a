package model

// TransactionStatus is the lifecycle state of an activity.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusConfirmed TransactionStatus = "CONFIRMED"
	StatusFailed    TransactionStatus = "FAILED"
)

// Currency is a token referenced by an activity.
type Currency struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name,omitempty"`
	Decimals int    `json:"decimals,omitempty"`
}

// Activity is one row of an account's history, either tracked locally or read remotely.
type Activity struct {
	Hash       string            `json:"hash"`
	ChainID    uint64            `json:"chainId"`
	Status     TransactionStatus `json:"status"`
	Timestamp  int64             `json:"timestamp"`
	From       string            `json:"from"`
	Nonce      *uint64           `json:"nonce,omitempty"`
	Title      string            `json:"title"`
	Descriptor string            `json:"descriptor,omitempty"`
	Logos      []string          `json:"logos,omitempty"`
	Currencies []Currency        `json:"currencies,omitempty"`
	Cancelled  bool              `json:"cancelled,omitempty"`
}

// ActivityMap indexes activities by transaction hash.
type ActivityMap map[string]*Activity
