package schema

// budgets are the structural overflow limits the Schema Parser enforces
// (§4.2 "structural overflow"). Each has a sane default and can be
// overridden via ParseOption, following the functional-options convention.
type budgets struct {
	maxFields        int
	maxEnumItems     int
	maxArrayDims     int
	maxExprDepth     int
	maxArrayElements int
}

func defaultBudgets() budgets {
	return budgets{
		maxFields:        512,
		maxEnumItems:     1024,
		maxArrayDims:     3,
		maxExprDepth:     10,
		maxArrayElements: 1 << 21,
	}
}

// ParseOption configures a Parse call's structural limits.
type ParseOption func(*budgets)

// WithMaxFields overrides the maximum number of fields permitted in a
// single struct or format body.
func WithMaxFields(n int) ParseOption {
	return func(b *budgets) { b.maxFields = n }
}

// WithMaxEnumItems overrides the maximum number of items permitted in a
// single enum body.
func WithMaxEnumItems(n int) ParseOption {
	return func(b *budgets) { b.maxEnumItems = n }
}

// WithMaxArrayDims overrides the maximum number of dimensions permitted on
// an array field. §3.1 requires this stay in {1,2,3}.
func WithMaxArrayDims(n int) ParseOption {
	return func(b *budgets) { b.maxArrayDims = n }
}

// WithMaxExprDepth overrides the maximum nesting depth of parenthesized
// guard expressions. The expression parser also applies its own fixed
// limit of 10 levels, so values above 10 do not raise the limit.
func WithMaxExprDepth(n int) ParseOption {
	return func(b *budgets) { b.maxExprDepth = n }
}

// WithMaxArrayElements records a maximum total element count for a single
// array dimension product (§4.5.1: "0 ≤ total_count ≤ 2^21"). The schema
// parser does not check array sizes against it; the limit applied while
// decoding is decode.WithMaxArrayElements.
func WithMaxArrayElements(n int) ParseOption {
	return func(b *budgets) { b.maxArrayElements = n }
}
