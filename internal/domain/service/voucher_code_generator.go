// Package service defines interfaces for supporting services consumed by
// the use case layer and implemented under internal/infra.
package service

// VoucherCodeGenerator produces collision-resistant, globally unique voucher
// codes. Uniqueness is ultimately enforced by the voucher table's unique
// index; the generator only needs to make collisions vanishingly rare.
type VoucherCodeGenerator interface {
	// NewCode returns a fresh voucher code.
	NewCode() (string, error)
}
