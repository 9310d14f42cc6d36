package domain

type TxType string

const (
	TxIn  TxType = "in"
	TxOut TxType = "out"
)

func (t TxType) Valid() bool { return t == TxIn || t == TxOut }

// AutoVerifier is recorded as verifier for transactions posted by an admin.
const AutoVerifier = "Auto-verified"

type Transaction struct {
	ID   int64  `db:"id" json:"id"`
	Date string `db:"date" json:"date"`
	// Item is the current name of the referenced item, or the name recorded
	// at posting time once that item no longer exists.
	Item             string  `db:"item" json:"item"`
	ItemID           *int64  `db:"item_id" json:"itemId,omitempty"`
	Orphaned         bool    `db:"orphaned" json:"orphaned"`
	Type             TxType  `db:"type" json:"type"`
	Quantity         int     `db:"quantity" json:"quantity"`
	PerformedBy      string  `db:"performed_by" json:"performedBy"`
	Notes            string  `db:"notes" json:"notes"`
	VerifiedBy       *string `db:"verified_by" json:"verifiedBy,omitempty"`
	VerificationDate *string `db:"verification_date" json:"verificationDate,omitempty"`
}

func (t Transaction) Verified() bool { return t.VerifiedBy != nil }

func (t Transaction) Verifier() string {
	if t.VerifiedBy == nil {
		return ""
	}
	return *t.VerifiedBy
}

func (t Transaction) VerifiedOn() string {
	if t.VerificationDate == nil {
		return ""
	}
	return *t.VerificationDate
}

// Signed is the quantity as it affects stock: negative for outbound.
func (t Transaction) Signed() int {
	if t.Type == TxOut {
		return -t.Quantity
	}
	return t.Quantity
}

func (t Transaction) Direction() string {
	if t.Type == TxIn {
		return "INBOUND"
	}
	return "OUTBOUND"
}
