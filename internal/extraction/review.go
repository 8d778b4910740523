package extraction

// Review flags name the fields a user should verify before saving
const (
	FlagStoreName   = "store_name"
	FlagAmount      = "amount"
	FlagReceiptDate = "receipt_date"
	FlagCategory    = "category"
)

// ReviewFlags lists the fields of r that could not be determined with confidence.
// The result is advisory and never nil.
func ReviewFlags(r *ExtractedReceipt) []string {
	flags := []string{}
	if r.StoreName == "" {
		flags = append(flags, FlagStoreName)
	}
	if r.Amount == nil || *r.Amount <= 0 {
		flags = append(flags, FlagAmount)
	}
	if r.ReceiptDate == nil {
		flags = append(flags, FlagReceiptDate)
	}
	if r.Category == Other {
		flags = append(flags, FlagCategory)
	}
	return flags
}
