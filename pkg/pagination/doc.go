// Package pagination turns page-numbered list endpoints into lazy record sequences.
//
// Sunlight list endpoints accept a 1-based page and a per_page count and return one
// slice of records per call. A Service declares which of its operations are pageable;
// a Paginator wraps that service and walks pageable operations page by page, stopping
// when a client-side limit is reached or the server returns a short page.
//
// Example usage:
//
//	p, err := pagination.New[client.Entity](congressService)
//	if err != nil {
//		return err
//	}
//	params := url.Values{"limit": {"70"}}
//	for bill, err := range p.Records(ctx, "bills", params) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(bill["bill_id"])
//	}
//
// Termination rules:
//   - limit reached: emission stops mid-page as soon as limit records were yielded
//   - short page: the running count is not a multiple of per_page
//   - empty page: the server returned no records
//
// Records are fetched only when the consumer asks for them. Breaking out of the
// range loop abandons the sequence; no further requests are made.
package pagination
