package service

// QRCodeService defines the interface for QR code generation services
type QRCodeService interface {
	// GenerateVoucherQR renders a voucher code as a PNG QR image for
	// point-of-sale scanning.
	GenerateVoucherQR(code string) ([]byte, error)
}
