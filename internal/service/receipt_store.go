package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

// ReceiptStore persists uploaded payment receipts and returns a stable URL.
// Storage is an external collaborator; the workflow only depends on this
// interface.
type ReceiptStore interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

var allowedReceiptTypes = []string{"image/jpeg", "image/png", "image/webp"}

// validateReceipt enforces the allowed image types and the size ceiling
// before anything touches storage or the ledger.
func validateReceipt(file *multipart.FileHeader, maxBytes int64) error {
	if file == nil {
		return fmt.Errorf("%w: receipt file is required", ErrInvalidReceipt)
	}

	if maxBytes > 0 && file.Size > maxBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidReceipt, maxBytes)
	}

	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open receipt: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect receipt type: %w", err)
	}

	for _, allowed := range allowedReceiptTypes {
		if mime.Is(allowed) {
			return nil
		}
	}

	return fmt.Errorf("%w: unsupported type %s", ErrInvalidReceipt, mime.String())
}
