package poker

import "errors"

// ErrInvalidHand is returned by the evaluator when given fewer than 5 or
// more than 7 cards.
var ErrInvalidHand = errors.New("poker: invalid hand size")

// ErrEmptyRange is returned when normalizing a range whose total weight is
// zero.
var ErrEmptyRange = errors.New("poker: empty range")
