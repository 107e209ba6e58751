package config

const (
	// MaxStepIDLength is the maximum length for step identifiers.
	// Backend step keys are short codes such as "STEP01".
	MaxStepIDLength = 64

	// MaxSubstepIDLength is the maximum length for substep identifiers.
	MaxSubstepIDLength = 64

	// MaxPredicateValues caps the number of values in one task predicate
	// (multi-select filters turn into IN lists).
	MaxPredicateValues = 100

	// MaxFilterPayloads caps the number of filter-bar fields in one search.
	MaxFilterPayloads = 50

	// MaxFilterValueLength is the maximum length of a single filter value.
	MaxFilterValueLength = 255
)
